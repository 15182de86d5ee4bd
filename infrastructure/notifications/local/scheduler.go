package local

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pingwards-backend/application/ports"
)

// Scheduler is an in-memory ports.NotificationScheduler for
// development and tests. It applies the same policy as the EventBridge
// adapter: past instants and a missing permission grant yield ""
// without registering anything. Entries do not actually fire.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	granted bool
	pending map[string]ports.PendingNotification
}

// NewScheduler creates a local scheduler. Permission starts granted;
// tests that exercise the denied path revoke it explicitly.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger,
		granted: true,
		pending: make(map[string]ports.PendingNotification),
	}
}

// Schedule registers a pending entry and returns its id
func (s *Scheduler) Schedule(ctx context.Context, fireAt time.Time, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.granted {
		return "", nil
	}
	if !fireAt.After(time.Now()) {
		return "", nil
	}

	id := uuid.New().String()
	s.pending[id] = ports.PendingNotification{
		ID:     id,
		FireAt: fireAt,
		Body:   body,
	}

	s.logger.Debug("notification scheduled",
		zap.String("notificationID", id),
		zap.Time("fireAt", fireAt),
	)
	return id, nil
}

// Cancel drops a pending entry. Empty and unknown ids are no-ops.
func (s *Scheduler) Cancel(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, notificationID)
	return nil
}

// CancelAll drops every pending entry
func (s *Scheduler) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]ports.PendingNotification)
	return nil
}

// ListPending snapshots the pending entries
func (s *Scheduler) ListPending(ctx context.Context) ([]ports.PendingNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ports.PendingNotification, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	return out, nil
}

// RequestPermission grants permission
func (s *Scheduler) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = true
	return true, nil
}

// RevokePermission withdraws the grant; subsequent Schedule calls
// return "" until RequestPermission succeeds again
func (s *Scheduler) RevokePermission() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = false
}
