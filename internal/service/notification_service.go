package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/config"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/jobs"
)

const jobTypeAssignmentNotification = "assignment.notify"

// Notifier delivers a finalized assignment to the substitute teacher.
// Delivery itself (email, push, SMS) lives in an external collaborator; this
// service only invokes it and records the outcome.
type Notifier interface {
	NotifyAssignment(ctx context.Context, sub models.Substitution) error
}

type notifiedMarker interface {
	MarkNotified(ctx context.Context, id string) error
}

// NotificationService dispatches assignment notifications through the
// background queue and flips is_notified on success.
type NotificationService struct {
	notifier Notifier
	subs     notifiedMarker
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewNotificationService builds the service and its queue.
func NewNotificationService(notifier Notifier, subs notifiedMarker, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		notifier: notifier,
		subs:     subs,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("assignment-notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins background dispatch.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules notification of a committed assignment.
func (s *NotificationService) Enqueue(sub models.Substitution) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeAssignmentNotification,
		Payload: sub,
	})
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	sub, ok := job.Payload.(models.Substitution)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAssignment(ctx, sub); err != nil {
			return fmt.Errorf("notify assignment %s: %w", sub.ID, err)
		}
	}

	if err := s.subs.MarkNotified(ctx, sub.ID); err != nil {
		return fmt.Errorf("mark assignment %s notified: %w", sub.ID, err)
	}

	s.logger.Info("assignment notified",
		zap.String("substitution_id", sub.ID),
		zap.String("substitute_teacher_id", sub.SubstituteTeacherID),
		zap.Int("period_index", sub.PeriodIndex))
	return nil
}

// LogNotifier is the default Notifier used when no delivery collaborator is
// configured. It only logs the event.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// NotifyAssignment logs the assignment.
func (n *LogNotifier) NotifyAssignment(_ context.Context, sub models.Substitution) error {
	n.logger.Info("substitution assigned",
		zap.String("substitute_teacher_id", sub.SubstituteTeacherID),
		zap.String("section_id", sub.SectionID),
		zap.Int("period_index", sub.PeriodIndex),
		zap.String("date", sub.Date.Format("2006-01-02")))
	return nil
}
