package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// WingRepository reads organizational units and their leave quotas.
type WingRepository struct {
	db *sqlx.DB
}

// NewWingRepository constructs the repository.
func NewWingRepository(db *sqlx.DB) *WingRepository {
	return &WingRepository{db: db}
}

// LockForUpdate loads the wing row inside tx with a row lock, serializing
// concurrent quota evaluations for the same wing.
func (r *WingRepository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Wing, error) {
	const query = `SELECT id, school_id, name, max_leave_per_day, priority_override, created_at
FROM wings WHERE id = $1 FOR UPDATE`
	var wing models.Wing
	if err := tx.GetContext(ctx, &wing, query, id); err != nil {
		return nil, err
	}
	return &wing, nil
}

// ListBySchool returns all wings of a school.
func (r *WingRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Wing, error) {
	const query = `SELECT id, school_id, name, max_leave_per_day, priority_override, created_at
FROM wings WHERE school_id = $1 ORDER BY name ASC`
	var wings []models.Wing
	if err := r.db.SelectContext(ctx, &wings, query, schoolID); err != nil {
		return nil, fmt.Errorf("list wings: %w", err)
	}
	return wings, nil
}
