package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// TeacherRepository reads the staff roster.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID returns a single roster record.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, school_id, full_name, email, role, wing_id, cross_wing_allowed, active, created_at, updated_at
FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListActiveBySchool returns all active teachers for a school.
func (r *TeacherRepository) ListActiveBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	const query = `SELECT id, school_id, full_name, email, role, wing_id, cross_wing_allowed, active, created_at, updated_at
FROM teachers WHERE school_id = $1 AND active = TRUE ORDER BY id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, schoolID); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}

// ListSubjectsBySchool returns every teacher-subject link for a school.
func (r *TeacherRepository) ListSubjectsBySchool(ctx context.Context, schoolID string) ([]models.TeacherSubject, error) {
	const query = `SELECT ts.teacher_id, ts.subject_id, ts.is_primary
FROM teacher_subjects ts
JOIN teachers t ON t.id = ts.teacher_id
WHERE t.school_id = $1
ORDER BY ts.teacher_id, ts.subject_id`
	var subjects []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &subjects, query, schoolID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}
