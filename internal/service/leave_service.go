package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/config"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
)

type leaveStore interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error)
	CountApproved(ctx context.Context, tx *sqlx.Tx, wingID string, date time.Time) (int, error)
	CountEarlierPending(ctx context.Context, tx *sqlx.Tx, wingID string, date, submittedAt time.Time) (int, error)
	Decide(ctx context.Context, tx *sqlx.Tx, id string, status models.LeaveStatus, decidedBy string, decidedAt time.Time) error
}

type wingLocker interface {
	LockForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Wing, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type allocationRunner interface {
	Allocate(ctx context.Context, schoolID string, date time.Time) (*dto.AllocationSummary, error)
}

type gateMetrics interface {
	RecordGateDecision(result string)
}

// LeaveService owns the leave request lifecycle and the capacity gate.
//
// Approve serializes per (wing, date): an in-process keyed mutex plus a DB
// transaction holding the wing row lock make the count-then-decide step
// atomic, so concurrent approvals can never overshoot the wing quota.
type LeaveService struct {
	db          *sqlx.DB
	leaves      leaveStore
	wings       wingLocker
	teachers    teacherReader
	allocations allocationRunner
	metrics     gateMetrics
	cfg         config.SubstitutionConfig
	gate        *keyedMutex
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLeaveService builds a LeaveService.
func NewLeaveService(
	db *sqlx.DB,
	leaves leaveStore,
	wings wingLocker,
	teachers teacherReader,
	allocations allocationRunner,
	metrics gateMetrics,
	cfg config.SubstitutionConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{
		db:          db,
		leaves:      leaves,
		wings:       wings,
		teachers:    teachers,
		allocations: allocations,
		metrics:     metrics,
		cfg:         cfg,
		gate:        newKeyedMutex(),
		validator:   validate,
		logger:      logger,
	}
}

// Submit records a new PENDING leave request.
func (s *LeaveService) Submit(ctx context.Context, req dto.SubmitLeaveRequest, claims *models.JWTClaims) (*models.LeaveRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if claims.Role == models.UserRoleTeacher && req.TeacherID != claims.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers may only submit their own leave")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.SchoolID != claims.SchoolID {
		return nil, appErrors.ErrForbidden
	}
	if !teacher.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher inactive")
	}

	leave := &models.LeaveRequest{
		SchoolID:  teacher.SchoolID,
		TeacherID: teacher.ID,
		WingID:    teacher.WingID,
		Date:      date,
		LeaveType: req.LeaveType,
	}
	if req.Reason != "" {
		leave.Reason = &req.Reason
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}

	s.logger.Info("leave request submitted",
		zap.String("leave_id", leave.ID),
		zap.String("teacher_id", leave.TeacherID),
		zap.String("date", req.Date))
	return leave, nil
}

// Approve runs the capacity gate for a PENDING request. A declined gate is a
// business outcome: the request stays PENDING and the decision value carries
// the reason. On approval the allocation run is triggered when auto
// allocation is enabled.
func (s *LeaveService) Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.LeaveDecisionResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	leave, err := s.loadPending(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	// The gate lock covers only the count-then-decide critical section. It is
	// released before the allocation run below: the approval is durable once
	// evaluateGate commits, and the run serializes on its own (school, date)
	// key, so holding the wing lock across allocation I/O would only block
	// unrelated approvals.
	unlock := s.gate.Lock(gateKey(leave.WingID, leave.Date))
	decision, err := s.evaluateGate(ctx, leave, claims.UserID)
	unlock()
	if err != nil {
		return nil, err
	}

	result := &dto.LeaveDecisionResult{Request: leave, Gate: *decision}

	if !decision.Approved {
		if s.metrics != nil {
			s.metrics.RecordGateDecision(string(decision.Reason))
		}
		s.logger.Info("leave approval deferred",
			zap.String("leave_id", leave.ID),
			zap.String("reason", string(decision.Reason)),
			zap.Int("approved_count", decision.ApprovedCount),
			zap.Int("quota", decision.Quota))
		return result, nil
	}

	if s.metrics != nil {
		s.metrics.RecordGateDecision("APPROVED")
	}
	s.logger.Info("leave approved",
		zap.String("leave_id", leave.ID),
		zap.String("decided_by", claims.UserID))

	if s.cfg.AutoAllocate && s.allocations != nil {
		summary, err := s.allocations.Allocate(ctx, leave.SchoolID, leave.Date)
		if err != nil {
			// The approval is already committed; the run can be replayed via
			// the on-demand endpoint.
			s.logger.Error("post-approval allocation failed",
				zap.String("leave_id", leave.ID),
				zap.Error(err))
		} else {
			result.Allocation = summary
		}
	}

	return result, nil
}

// Reject terminally rejects a PENDING request. No gate evaluation; rejection
// frees no approved capacity (it never held any).
func (s *LeaveService) Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.LeaveRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	leave, err := s.loadPending(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin decision")
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if err := s.leaves.Decide(ctx, tx, leave.ID, models.LeaveRejected, claims.UserID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "leave request already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject leave request")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit decision")
	}

	leave.Status = models.LeaveRejected
	leave.DecidedAt = &now
	decidedBy := claims.UserID
	leave.DecidedBy = &decidedBy

	if s.metrics != nil {
		s.metrics.RecordGateDecision("REJECTED")
	}
	s.logger.Info("leave rejected", zap.String("leave_id", leave.ID), zap.String("decided_by", claims.UserID))
	return leave, nil
}

// List returns leave requests matching the query, earliest submitted first.
func (s *LeaveService) List(ctx context.Context, query dto.LeaveListQuery, claims *models.JWTClaims) ([]models.LeaveRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave query")
	}

	filter := models.LeaveFilter{
		SchoolID: claims.SchoolID,
		WingID:   query.WingID,
		Status:   models.LeaveStatus(query.Status),
	}
	if query.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", query.Date, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
		}
		filter.Date = &date
	}

	leaves, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return leaves, nil
}

func (s *LeaveService) loadPending(ctx context.Context, id string, claims *models.JWTClaims) (*models.LeaveRequest, error) {
	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.SchoolID != claims.SchoolID {
		return nil, appErrors.ErrForbidden
	}
	if leave.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "leave request already decided")
	}
	return leave, nil
}

// evaluateGate holds the wing row lock while counting, so the quota check and
// the status transition are one atomic step.
func (s *LeaveService) evaluateGate(ctx context.Context, leave *models.LeaveRequest, decidedBy string) (*models.GateDecision, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin gate evaluation")
	}
	defer func() { _ = tx.Rollback() }()

	wing, err := s.wings.LockForUpdate(ctx, tx, leave.WingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "wing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock wing")
	}

	approvedCount, err := s.leaves.CountApproved(ctx, tx, leave.WingID, leave.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved leaves")
	}

	decision := &models.GateDecision{
		ApprovedCount: approvedCount,
		Quota:         wing.MaxLeavePerDay,
	}

	if approvedCount >= wing.MaxLeavePerDay {
		decision.Reason = models.GateWingQuotaExceeded
		return decision, nil
	}

	// First come, first served: capacity already claimed by earlier-submitted
	// pending requests cannot be handed to this one.
	earlier, err := s.leaves.CountEarlierPending(ctx, tx, leave.WingID, leave.Date, leave.SubmittedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count earlier pending leaves")
	}
	if earlier >= wing.MaxLeavePerDay-approvedCount {
		decision.Reason = models.GateEarlierRequestPending
		return decision, nil
	}

	now := time.Now().UTC()
	if err := s.leaves.Decide(ctx, tx, leave.ID, models.LeaveApproved, decidedBy, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "leave request already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve leave request")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit gate decision")
	}

	leave.Status = models.LeaveApproved
	leave.DecidedAt = &now
	leave.DecidedBy = &decidedBy

	decision.Approved = true
	decision.ApprovedCount = approvedCount + 1
	return decision, nil
}

func gateKey(wingID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", wingID, date.Format("2006-01-02"))
}
