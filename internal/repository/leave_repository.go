package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

const leaveColumns = `id, school_id, teacher_id, wing_id, date, leave_type, reason, status, submitted_at, decided_at, decided_by`

// LeaveRepository persists leave requests and their status transitions.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new PENDING request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.SubmittedAt.IsZero() {
		leave.SubmittedAt = time.Now().UTC()
	}
	leave.Status = models.LeavePending
	const query = `INSERT INTO leave_requests (id, school_id, teacher_id, wing_id, date, leave_type, reason, status, submitted_at)
		VALUES (:id, :school_id, :teacher_id, :wing_id, :date, :leave_type, :reason, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// FindByID returns a leave request.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`
	var leave models.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// List returns leave requests matching the filter, earliest submitted first
// so approvers see the FCFS queue in decision order.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE school_id = $1`
	args := []interface{}{filter.SchoolID}

	if filter.WingID != "" {
		args = append(args, filter.WingID)
		query += fmt.Sprintf(" AND wing_id = $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY submitted_at ASC"

	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return leaves, nil
}

// CountApproved counts APPROVED requests for (wing, date) inside tx. Callers
// must hold the wing row lock so the count stays valid until commit.
func (r *LeaveRepository) CountApproved(ctx context.Context, tx *sqlx.Tx, wingID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM leave_requests WHERE wing_id = $1 AND date = $2 AND status = 'APPROVED'`
	var count int
	if err := tx.GetContext(ctx, &count, query, wingID, date); err != nil {
		return 0, fmt.Errorf("count approved leaves: %w", err)
	}
	return count, nil
}

// CountEarlierPending counts PENDING requests for (wing, date) submitted
// strictly before the given instant.
func (r *LeaveRepository) CountEarlierPending(ctx context.Context, tx *sqlx.Tx, wingID string, date, submittedAt time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM leave_requests
WHERE wing_id = $1 AND date = $2 AND status = 'PENDING' AND submitted_at < $3`
	var count int
	if err := tx.GetContext(ctx, &count, query, wingID, date, submittedAt); err != nil {
		return 0, fmt.Errorf("count earlier pending leaves: %w", err)
	}
	return count, nil
}

// Decide transitions a PENDING request to APPROVED or REJECTED inside tx.
// Returns sql.ErrNoRows when the request was already decided; transitions
// are append-only and irreversible.
func (r *LeaveRepository) Decide(ctx context.Context, tx *sqlx.Tx, id string, status models.LeaveStatus, decidedBy string, decidedAt time.Time) error {
	const query = `UPDATE leave_requests
SET status = $2, decided_by = $3, decided_at = $4
WHERE id = $1 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, query, id, status, decidedBy, decidedAt)
	if err != nil {
		return fmt.Errorf("decide leave request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check decided rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
