package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// ErrSlotTaken signals that a conflicting ledger row already exists for the
// (date, period, section) or (date, period, substitute) key. The unique
// indexes are the persistence-boundary guard for the ledger invariants; a
// losing writer sees this error instead of silently overwriting.
var ErrSlotTaken = errors.New("substitution slot already taken")

const substitutionColumns = `id, school_id, date, period_index, section_id, original_teacher_id, substitute_teacher_id, subject_id, leave_request_id, score, weights_version, is_notified, created_at`

// SubstitutionRepository is the append-only assignment ledger.
type SubstitutionRepository struct {
	db *sqlx.DB
}

// NewSubstitutionRepository constructs the repository.
func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

// Insert appends one ledger row. ON CONFLICT DO NOTHING plus the affected-row
// check is the optimistic-concurrency primitive: when another run committed
// the slot first, the caller gets ErrSlotTaken and can retry on a fresh
// snapshot.
func (r *SubstitutionRepository) Insert(ctx context.Context, sub *models.Substitution) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO substitutions
	(id, school_id, date, period_index, section_id, original_teacher_id, substitute_teacher_id, subject_id, leave_request_id, score, weights_version, is_notified, created_at)
	VALUES (:id, :school_id, :date, :period_index, :section_id, :original_teacher_id, :substitute_teacher_id, :subject_id, :leave_request_id, :score, :weights_version, :is_notified, :created_at)
	ON CONFLICT DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return fmt.Errorf("insert substitution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check inserted substitution rows: %w", err)
	}
	if affected == 0 {
		return ErrSlotTaken
	}
	return nil
}

// ListByTeacherAndDate returns assignments held by a substitute on a date.
func (r *SubstitutionRepository) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Substitution, error) {
	query := `SELECT ` + substitutionColumns + ` FROM substitutions
WHERE substitute_teacher_id = $1 AND date = $2
ORDER BY period_index ASC`
	var subs []models.Substitution
	if err := r.db.SelectContext(ctx, &subs, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list substitutions by teacher: %w", err)
	}
	return subs, nil
}

// ListBySchoolAndDate returns the full ledger for a school day.
func (r *SubstitutionRepository) ListBySchoolAndDate(ctx context.Context, schoolID string, date time.Time) ([]models.Substitution, error) {
	query := `SELECT ` + substitutionColumns + ` FROM substitutions
WHERE school_id = $1 AND date = $2
ORDER BY period_index ASC, section_id ASC`
	var subs []models.Substitution
	if err := r.db.SelectContext(ctx, &subs, query, schoolID, date); err != nil {
		return nil, fmt.Errorf("list substitutions by school: %w", err)
	}
	return subs, nil
}

// WeeklyLoadBySchool counts ledger rows per substitute in [from, to).
func (r *SubstitutionRepository) WeeklyLoadBySchool(ctx context.Context, schoolID string, from, to time.Time) ([]TeacherPeriodCount, error) {
	const query = `SELECT substitute_teacher_id AS teacher_id, COUNT(*) AS periods
FROM substitutions
WHERE school_id = $1 AND date >= $2 AND date < $3
GROUP BY substitute_teacher_id`
	var counts []TeacherPeriodCount
	if err := r.db.SelectContext(ctx, &counts, query, schoolID, from, to); err != nil {
		return nil, fmt.Errorf("weekly substitution load: %w", err)
	}
	return counts, nil
}

// MarkNotified flips the notification flag, the only mutation a ledger row
// ever receives.
func (r *SubstitutionRepository) MarkNotified(ctx context.Context, id string) error {
	const query = `UPDATE substitutions SET is_notified = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark substitution notified: %w", err)
	}
	return nil
}

// ReplaceUnfilled swaps the unfilled-vacancy report for a leave request so
// each re-run leaves exactly the latest outcome visible.
func (r *SubstitutionRepository) ReplaceUnfilled(ctx context.Context, leaveRequestID string, vacancies []models.UnfilledVacancy) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unfilled replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM unfilled_vacancies WHERE leave_request_id = $1`, leaveRequestID); err != nil {
		err = fmt.Errorf("clear unfilled vacancies: %w", err)
		return err
	}

	const insert = `INSERT INTO unfilled_vacancies
	(id, school_id, date, period_index, section_id, original_teacher_id, subject_id, leave_request_id, reason, created_at)
	VALUES (:id, :school_id, :date, :period_index, :section_id, :original_teacher_id, :subject_id, :leave_request_id, :reason, :created_at)`
	for i := range vacancies {
		if vacancies[i].ID == "" {
			vacancies[i].ID = uuid.NewString()
		}
		if vacancies[i].CreatedAt.IsZero() {
			vacancies[i].CreatedAt = time.Now().UTC()
		}
		if _, err = tx.NamedExecContext(ctx, insert, vacancies[i]); err != nil {
			err = fmt.Errorf("insert unfilled vacancy: %w", err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit unfilled replace: %w", err)
	}
	return nil
}

// ListUnfilled returns open vacancies for a school day.
func (r *SubstitutionRepository) ListUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error) {
	const query = `SELECT id, school_id, date, period_index, section_id, original_teacher_id, subject_id, leave_request_id, reason, created_at
FROM unfilled_vacancies
WHERE school_id = $1 AND date = $2
ORDER BY period_index ASC, section_id ASC`
	var vacancies []models.UnfilledVacancy
	if err := r.db.SelectContext(ctx, &vacancies, query, schoolID, date); err != nil {
		return nil, fmt.Errorf("list unfilled vacancies: %w", err)
	}
	return vacancies, nil
}
