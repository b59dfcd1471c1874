package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// SectionRepository reads class sections and their room/wing mapping.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListBySchool returns all sections of a school.
func (r *SectionRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Section, error) {
	const query = `SELECT id, school_id, wing_id, name, room, created_at
FROM sections WHERE school_id = $1 ORDER BY name ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, schoolID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}
