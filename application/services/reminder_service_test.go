package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/ports"
	"pingwards-backend/domain/core/entities"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
	"pingwards-backend/infrastructure/notifications/local"
	pkgerrors "pingwards-backend/pkg/errors"
	"pingwards-backend/pkg/observability"
)

// memoryRepo is an in-memory ports.ReminderRepository for service tests
type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*entities.Reminder
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]*entities.Reminder)}
}

func (r *memoryRepo) Create(ctx context.Context, reminder *entities.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reminder.ID().String()
	if _, exists := r.items[key]; exists {
		return pkgerrors.NewConflictError("reminder already exists")
	}
	r.items[key] = reminder
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id valueobjects.ReminderID) (*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.items[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}
	return clone(reminder)
}

func (r *memoryRepo) Update(ctx context.Context, id valueobjects.ReminderID, changes ports.ReminderChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.items[id.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("reminder")
	}

	text := reminder.Text()
	if changes.Text != nil {
		t, err := valueobjects.NewReminderText(*changes.Text)
		if err != nil {
			return err
		}
		text = t
	}

	notificationDate := reminder.NotificationDate()
	if changes.NotificationDate != nil {
		nd, err := valueobjects.NewNotificationTime(*changes.NotificationDate)
		if err != nil {
			return err
		}
		notificationDate = nd
	}

	completed := reminder.Completed()
	if changes.Completed != nil {
		completed = *changes.Completed
	}

	completedAt := reminder.CompletedAt()
	if changes.CompletedAt != nil {
		completedAt = changes.CompletedAt
	}
	if changes.ClearCompletedAt {
		completedAt = nil
	}

	metadata := entities.Metadata{
		Category: reminder.Category(),
		Priority: reminder.Priority(),
		Tags:     reminder.Tags(),
	}
	if changes.Category != nil {
		metadata.Category = *changes.Category
	}
	if changes.Priority != nil {
		metadata.Priority = *changes.Priority
	}
	if changes.Tags != nil {
		metadata.Tags = *changes.Tags
	}

	notificationID := reminder.NotificationID()
	if changes.NotificationID != nil {
		notificationID = *changes.NotificationID
	}

	updated, err := entities.ReconstructReminder(
		reminder.ID(), reminder.UserID(), text, reminder.CreatedDate(),
		notificationDate, completed, completedAt, metadata, notificationID,
	)
	if err != nil {
		return err
	}
	r.items[id.String()] = updated
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id valueobjects.ReminderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id.String())
	return nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Reminder
	for _, reminder := range r.items {
		if reminder.UserID() == userID {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListScheduled(ctx context.Context) ([]*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Reminder
	for _, reminder := range r.items {
		if reminder.NotificationID() != "" {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func clone(r *entities.Reminder) (*entities.Reminder, error) {
	return entities.ReconstructReminder(
		r.ID(), r.UserID(), r.Text(), r.CreatedDate(), r.NotificationDate(),
		r.Completed(), r.CompletedAt(),
		entities.Metadata{Category: r.Category(), Priority: r.Priority(), Tags: r.Tags()},
		r.NotificationID(),
	)
}

// nopEventBus swallows events
type nopEventBus struct{}

func (nopEventBus) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (nopEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

// brokenScheduler fails every platform call
type brokenScheduler struct{}

func (brokenScheduler) Schedule(ctx context.Context, fireAt time.Time, body string) (string, error) {
	return "", errors.New("platform unavailable")
}
func (brokenScheduler) Cancel(ctx context.Context, notificationID string) error {
	return errors.New("platform unavailable")
}
func (brokenScheduler) CancelAll(ctx context.Context) error { return errors.New("platform unavailable") }
func (brokenScheduler) ListPending(ctx context.Context) ([]ports.PendingNotification, error) {
	return nil, errors.New("platform unavailable")
}
func (brokenScheduler) RequestPermission(ctx context.Context) (bool, error) {
	return false, errors.New("platform unavailable")
}

func newTestService(t *testing.T) (*ReminderLifecycleService, *memoryRepo, *local.Scheduler) {
	t.Helper()
	repo := newMemoryRepo()
	scheduler := local.NewScheduler(zap.NewNop())
	svc := NewReminderLifecycleService(
		repo,
		scheduler,
		nopEventBus{},
		nil,
		zap.NewNop(),
		observability.NewMetrics("Test", nil),
		observability.NewTracer("test", false),
	)
	return svc, repo, scheduler
}

func createCmd(userID string, fireAt time.Time) commands.CreateReminderCommand {
	return commands.CreateReminderCommand{
		ReminderID:       uuid.New().String(),
		UserID:           userID,
		Text:             "water the plants",
		NotificationDate: fireAt,
	}
}

func pendingIDs(t *testing.T, scheduler *local.Scheduler) []string {
	t.Helper()
	pending, err := scheduler.ListPending(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCreateReminder_SchedulesExactlyOne(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	reminder, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.NotEmpty(t, reminder.NotificationID())

	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.Equal(t, reminder.NotificationID(), ids[0])

	// the mapping survived the round trip to storage
	stored, err := repo.GetByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, reminder.NotificationID(), stored.NotificationID())
}

func TestCreateReminder_PastDateStoresWithoutScheduling(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	reminder, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, reminder.NotificationID())
	assert.Empty(t, pendingIDs(t, scheduler))

	_, err = repo.GetByID(ctx, reminder.ID())
	assert.NoError(t, err)
}

func TestCreateReminder_WithoutPermissionStoresUnscheduled(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	scheduler.RevokePermission()

	reminder, err := svc.CreateReminder(context.Background(), createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, reminder.NotificationID())
	assert.Empty(t, pendingIDs(t, scheduler))
}

func TestCreateReminder_ValidationFailures(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	cmd := createCmd("user123", time.Now().Add(time.Hour))
	cmd.Text = "   "
	_, err := svc.CreateReminder(ctx, cmd)
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, repo.items)

	cmd = createCmd("", time.Now().Add(time.Hour))
	_, err = svc.CreateReminder(ctx, cmd)
	assert.Error(t, err)
}

func TestCreateReminder_SchedulingFailureIsSwallowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewReminderLifecycleService(
		repo,
		brokenScheduler{},
		nopEventBus{},
		nil,
		zap.NewNop(),
		observability.NewMetrics("Test", nil),
		observability.NewTracer("test", false),
	)

	reminder, err := svc.CreateReminder(context.Background(), createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, reminder.NotificationID())

	// the write committed even though scheduling failed
	_, err = repo.GetByID(context.Background(), reminder.ID())
	assert.NoError(t, err)
}

func TestEditReminder_DateChangeReissuesNotification(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	oldNotifID := created.NotificationID()

	newDate := time.Now().Add(6 * time.Hour)
	edited, err := svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:           "user123",
		ReminderID:       created.ID().String(),
		NotificationDate: &newDate,
	})
	require.NoError(t, err)

	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.NotEqual(t, oldNotifID, ids[0])
	assert.Equal(t, edited.NotificationID(), ids[0])
}

func TestEditReminder_TextChangeWithLiveScheduleReissues(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	oldNotifID := created.NotificationID()

	newText := "water the plants and the herbs"
	_, err = svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
		Text:       &newText,
	})
	require.NoError(t, err)

	pending, err := scheduler.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, oldNotifID, pending[0].ID)
	assert.Equal(t, newText, pending[0].Body)
}

func TestEditReminder_MetadataOnlyKeepsNotification(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	category := "Errands"
	edited, err := svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
		Category:   &category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Errands", edited.Category())

	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.Equal(t, created.NotificationID(), ids[0])
}

func TestEditReminder_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	text := "whatever"
	_, err := svc.EditReminder(context.Background(), commands.UpdateReminderCommand{
		UserID:     "user123",
		ReminderID: uuid.New().String(),
		Text:       &text,
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEditReminder_OtherUsersReminderReadsAsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	text := "sneaky edit"
	_, err = svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:     "intruder",
		ReminderID: created.ID().String(),
		Text:       &text,
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteReminder_CancelsBeforeDeleting(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, pendingIDs(t, scheduler), 1)

	cmd := commands.DeleteReminderCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
	}
	require.NoError(t, svc.DeleteReminder(ctx, cmd))

	assert.Empty(t, pendingIDs(t, scheduler))
	_, err = repo.GetByID(ctx, created.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	// deleting again is a no-op
	assert.NoError(t, svc.DeleteReminder(ctx, cmd))
}

func TestToggleComplete_RoundTrip(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	cmd := commands.ToggleCompleteCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
	}

	// complete: notification cancelled, completedAt stamped
	completed, err := svc.ToggleComplete(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, completed.Completed())
	require.NotNil(t, completed.CompletedAt())
	assert.Empty(t, pendingIDs(t, scheduler))

	// reopen: future date, so a fresh notification is issued
	reopened, err := svc.ToggleComplete(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, reopened.Completed())
	assert.Nil(t, reopened.CompletedAt())

	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.NotEqual(t, created.NotificationID(), ids[0])
}

func TestToggleComplete_ReopenPastDateStaysUnscheduled(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	cmd := commands.ToggleCompleteCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
	}

	_, err = svc.ToggleComplete(ctx, cmd)
	require.NoError(t, err)

	reopened, err := svc.ToggleComplete(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, reopened.Completed())
	assert.Empty(t, reopened.NotificationID())
	assert.Empty(t, pendingIDs(t, scheduler))
}

func TestSnoozeReminder_ShiftsAndReissues(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	fireAt := time.Now().Add(time.Hour)
	created, err := svc.CreateReminder(ctx, createCmd("user123", fireAt))
	require.NoError(t, err)
	oldNotifID := created.NotificationID()

	snoozed, err := svc.SnoozeReminder(ctx, commands.SnoozeReminderCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
	})
	require.NoError(t, err)

	assert.WithinDuration(t, fireAt.Add(10*time.Minute), snoozed.NotificationDate().Time(), time.Second)

	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.NotEqual(t, oldNotifID, ids[0])
}

func TestCancelAllForLogout(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)
	require.Len(t, pendingIDs(t, scheduler), 2)

	require.NoError(t, svc.CancelAllForLogout(ctx, "user123"))

	assert.Empty(t, pendingIDs(t, scheduler))
	stored, err := repo.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.NotificationID())
}

func TestRestoreSchedules_ReissuesLostAndDropsStale(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	// future incomplete reminder whose platform entry was lost
	lost, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, scheduler.Cancel(ctx, lost.NotificationID()))

	// completed reminder whose platform entry lingers
	stale, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)
	staleNotifID := stale.NotificationID()
	_, err = svc.ToggleComplete(ctx, commands.ToggleCompleteCommand{
		UserID:     "user123",
		ReminderID: stale.ID().String(),
	})
	require.NoError(t, err)
	// resurrect the platform entry and the stored id to simulate a
	// crash between cancel and persist
	resurrectedID, err := scheduler.Schedule(ctx, time.Now().Add(2*time.Hour), "water the plants")
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, stale.ID(), ports.ReminderChanges{NotificationID: &resurrectedID}))

	require.NoError(t, svc.RestoreSchedules(ctx))

	// the lost one is back, the stale one is gone
	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.NotContains(t, ids, staleNotifID)
	assert.NotContains(t, ids, resurrectedID)

	restored, err := repo.GetByID(ctx, lost.ID())
	require.NoError(t, err)
	assert.Equal(t, ids[0], restored.NotificationID())

	cleared, err := repo.GetByID(ctx, stale.ID())
	require.NoError(t, err)
	assert.Empty(t, cleared.NotificationID())
}

func TestCreateReminder_RejectsFarFutureDate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(366*24*time.Hour)))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, repo.items)
}

func TestEditReminder_RejectsFarFutureDate(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	farOut := time.Now().Add(400 * 24 * time.Hour)
	_, err = svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:           "user123",
		ReminderID:       created.ID().String(),
		NotificationDate: &farOut,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	// the original notification is untouched
	ids := pendingIDs(t, scheduler)
	require.Len(t, ids, 1)
	assert.Equal(t, created.NotificationID(), ids[0])
}

func TestToggleComplete_ClearsStoredNotificationID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.NotEmpty(t, stored.NotificationID())

	_, err = svc.ToggleComplete(ctx, commands.ToggleCompleteCommand{
		UserID:     "user123",
		ReminderID: created.ID().String(),
	})
	require.NoError(t, err)

	// the durable copy is cleared too, not just the in-memory mapping
	stored, err = repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.NotificationID())
}

func TestEditReminder_PastDateClearsStoredNotificationID(t *testing.T) {
	svc, repo, scheduler := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	edited, err := svc.EditReminder(ctx, commands.UpdateReminderCommand{
		UserID:           "user123",
		ReminderID:       created.ID().String(),
		NotificationDate: &past,
	})
	require.NoError(t, err)
	assert.Empty(t, edited.NotificationID())
	assert.Empty(t, pendingIDs(t, scheduler))

	stored, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.NotificationID())
}

func TestCancelAllForLogout_PlatformFailureIsSwallowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewReminderLifecycleService(
		repo,
		brokenScheduler{},
		nopEventBus{},
		nil,
		zap.NewNop(),
		observability.NewMetrics("Test", nil),
		observability.NewTracer("test", false),
	)
	ctx := context.Background()

	created, err := svc.CreateReminder(ctx, createCmd("user123", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, svc.CancelAllForLogout(ctx, "user123"))

	stored, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.NotificationID())
}
