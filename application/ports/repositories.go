package ports

import (
	"context"
	"time"

	"pingwards-backend/domain/core/entities"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
)

// ReminderRepository defines the interface for reminder persistence.
// This is a port in hexagonal architecture - the domain doesn't know
// about the implementation.
type ReminderRepository interface {
	// Create persists a new reminder record
	Create(ctx context.Context, reminder *entities.Reminder) error

	// GetByID retrieves a reminder by its ID
	GetByID(ctx context.Context, id valueobjects.ReminderID) (*entities.Reminder, error)

	// Update merges the given changes into the stored record;
	// unspecified fields are untouched
	Update(ctx context.Context, id valueobjects.ReminderID, changes ReminderChanges) error

	// Delete removes a reminder. Idempotent: deleting a nonexistent id
	// is not an error
	Delete(ctx context.Context, id valueobjects.ReminderID) error

	// ListByUser retrieves all reminders for a user; order is unspecified
	ListByUser(ctx context.Context, userID string) ([]*entities.Reminder, error)

	// ListScheduled retrieves every reminder carrying a notification id,
	// across all users. Used by startup reconciliation only.
	ListScheduled(ctx context.Context) ([]*entities.Reminder, error)
}

// ReminderChanges is a partial update; nil fields are left untouched.
type ReminderChanges struct {
	Text             *string
	NotificationDate *time.Time
	Completed        *bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
	Category         *string
	Priority         *string
	Tags             *[]string
	NotificationID   *string
}

// IsEmpty reports whether the change set touches nothing
func (c ReminderChanges) IsEmpty() bool {
	return c.Text == nil &&
		c.NotificationDate == nil &&
		c.Completed == nil &&
		c.CompletedAt == nil &&
		!c.ClearCompletedAt &&
		c.Category == nil &&
		c.Priority == nil &&
		c.Tags == nil &&
		c.NotificationID == nil
}

// NotificationTitle is the fixed title attached to every scheduled
// notification; the body carries the reminder text.
const NotificationTitle = "PingWards Reminder"

// PendingNotification is one entry in the platform's pending queue
type PendingNotification struct {
	ID     string
	FireAt time.Time
	Body   string
}

// NotificationScheduler wraps the platform's scheduled-notification API.
// The scheduler has no notion of reminder identity, only opaque
// notification identifiers; the lifecycle service owns the mapping and
// the cancel-before-reschedule discipline.
type NotificationScheduler interface {
	// Schedule registers a one-shot notification carrying body at fireAt
	// and returns its platform-assigned identifier. Returns "" without
	// scheduling when fireAt is not in the future or when permission was
	// never granted; both are policy, not platform limitations.
	Schedule(ctx context.Context, fireAt time.Time, body string) (string, error)

	// Cancel removes a pending notification. No-op for empty or unknown ids.
	Cancel(ctx context.Context, notificationID string) error

	// CancelAll clears every pending entry (full resets, e.g. logout)
	CancelAll(ctx context.Context) error

	// ListPending returns the platform's pending queue for introspection
	ListPending(ctx context.Context) ([]PendingNotification, error)

	// RequestPermission performs the platform's best-effort permission
	// probe; until it succeeds Schedule degrades to a no-op returning ""
	RequestPermission(ctx context.Context) (bool, error)
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Cache provides read-path caching for query handlers
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
