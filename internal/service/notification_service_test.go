package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/config"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/jobs"
)

type notifierRecorder struct {
	notified []string
	err      error
}

func (n *notifierRecorder) NotifyAssignment(ctx context.Context, sub models.Substitution) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, sub.ID)
	return nil
}

type markerRecorder struct {
	mu     sync.Mutex
	marked []string
}

func (m *markerRecorder) MarkNotified(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, id)
	return nil
}

func (m *markerRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.marked)
}

func notificationTestConfig() config.NotificationsConfig {
	return config.NotificationsConfig{Workers: 1, MaxRetries: 1, RetryDelay: time.Millisecond}
}

func TestNotificationServiceHandleMarksNotified(t *testing.T) {
	notifier := &notifierRecorder{}
	marker := &markerRecorder{}
	svc := NewNotificationService(notifier, marker, notificationTestConfig(), nil)

	sub := models.Substitution{ID: "sub-1", SubstituteTeacherID: "t-1", PeriodIndex: 2}
	err := svc.handle(context.Background(), jobs.Job{ID: "job-1", Type: jobTypeAssignmentNotification, Payload: sub})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1"}, notifier.notified)
	assert.Equal(t, []string{"sub-1"}, marker.marked)
}

func TestNotificationServiceHandlePropagatesDeliveryFailure(t *testing.T) {
	notifier := &notifierRecorder{err: errors.New("smtp down")}
	marker := &markerRecorder{}
	svc := NewNotificationService(notifier, marker, notificationTestConfig(), nil)

	sub := models.Substitution{ID: "sub-1"}
	err := svc.handle(context.Background(), jobs.Job{ID: "job-1", Type: jobTypeAssignmentNotification, Payload: sub})
	require.Error(t, err)
	assert.Empty(t, marker.marked, "failed delivery must not mark the row notified")
}

func TestNotificationServiceEnqueueRequiresStart(t *testing.T) {
	svc := NewNotificationService(&notifierRecorder{}, &markerRecorder{}, notificationTestConfig(), nil)

	err := svc.Enqueue(models.Substitution{ID: "sub-1"})
	require.Error(t, err)
}

func TestNotificationServiceEndToEnd(t *testing.T) {
	notifier := &notifierRecorder{}
	marker := &markerRecorder{}
	svc := NewNotificationService(notifier, marker, notificationTestConfig(), nil)

	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.Enqueue(models.Substitution{ID: "sub-1", SubstituteTeacherID: "t-1"}))
	assert.Eventually(t, func() bool {
		return marker.count() == 1
	}, time.Second, 5*time.Millisecond)
}
