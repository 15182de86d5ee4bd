package entities

import (
	"time"

	"pingwards-backend/domain/config"
	"pingwards-backend/domain/core/validators"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
	pkgerrors "pingwards-backend/pkg/errors"
)

// Metadata contains display-only classification fields.
// None of these affect scheduling or persistence mechanics.
type Metadata struct {
	Category string
	Priority string
	Tags     []string
}

// Reminder is the main entity: a user-facing task with an associated
// future alert time. This is a rich domain model with encapsulated
// business logic; private fields ensure encapsulation.
type Reminder struct {
	id               valueobjects.ReminderID
	userID           string
	text             valueobjects.ReminderText
	createdDate      time.Time
	notificationDate valueobjects.NotificationTime
	completed        bool
	completedAt      *time.Time
	metadata         Metadata

	// notificationID is the platform identifier of the live scheduled
	// notification, persisted with the record so the mapping survives
	// process restarts. Empty when nothing is pending.
	notificationID string

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewReminder creates a new reminder with full business rule validation.
// A zero id means "assign a fresh one"; callers that need to know the id
// before the write commits (client-generated UUIDs are the document-store
// idiom) pass their own.
func NewReminder(id valueobjects.ReminderID, userID string, text valueobjects.ReminderText, notificationDate valueobjects.NotificationTime, metadata Metadata) (*Reminder, error) {
	return NewReminderWithConfig(id, userID, text, notificationDate, metadata, config.DefaultDomainConfig())
}

// NewReminderWithConfig creates a new reminder with configuration
func NewReminderWithConfig(id valueobjects.ReminderID, userID string, text valueobjects.ReminderText, notificationDate valueobjects.NotificationTime, metadata Metadata, cfg *config.DomainConfig) (*Reminder, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if text.IsEmpty() {
		return nil, pkgerrors.NewValidationError("reminder text cannot be empty")
	}

	v := validators.NewReminderValidatorWithConfig(cfg)
	if err := v.ValidateNotificationDate(notificationDate.Time(), now); err != nil {
		return nil, err
	}
	if err := v.ValidatePriority(metadata.Priority); err != nil {
		return nil, err
	}
	if err := v.ValidateTags(metadata.Tags); err != nil {
		return nil, err
	}

	if metadata.Category == "" {
		metadata.Category = cfg.DefaultCategory
	}
	if metadata.Priority == "" {
		metadata.Priority = cfg.DefaultPriority
	}

	if id.IsZero() {
		id = valueobjects.NewReminderID()
	}
	reminder := &Reminder{
		id:               id,
		userID:           userID,
		text:             text,
		createdDate:      now,
		notificationDate: notificationDate,
		completed:        false,
		metadata:         metadata,
		events:           []events.DomainEvent{},
	}

	reminder.addEvent(events.NewReminderCreated(
		reminder.id,
		userID,
		text.String(),
		notificationDate.Time(),
		now,
	))

	return reminder, nil
}

// ReconstructReminder reconstructs a reminder from repository data with
// preserved timestamps and completion state
func ReconstructReminder(
	id valueobjects.ReminderID,
	userID string,
	text valueobjects.ReminderText,
	createdDate time.Time,
	notificationDate valueobjects.NotificationTime,
	completed bool,
	completedAt *time.Time,
	metadata Metadata,
	notificationID string,
) (*Reminder, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if text.IsEmpty() {
		return nil, pkgerrors.NewValidationError("reminder text cannot be empty")
	}

	return &Reminder{
		id:               id,
		userID:           userID,
		text:             text,
		createdDate:      createdDate,
		notificationDate: notificationDate,
		completed:        completed,
		completedAt:      completedAt,
		metadata:         metadata,
		notificationID:   notificationID,
		events:           []events.DomainEvent{},
	}, nil
}

// ID returns the reminder's unique identifier
func (r *Reminder) ID() valueobjects.ReminderID {
	return r.id
}

// UserID returns the owner's ID
func (r *Reminder) UserID() string {
	return r.userID
}

// Text returns the reminder text
func (r *Reminder) Text() valueobjects.ReminderText {
	return r.text
}

// CreatedDate returns when the reminder was created
func (r *Reminder) CreatedDate() time.Time {
	return r.createdDate
}

// NotificationDate returns the intended delivery time
func (r *Reminder) NotificationDate() valueobjects.NotificationTime {
	return r.notificationDate
}

// Completed returns the completion state
func (r *Reminder) Completed() bool {
	return r.completed
}

// CompletedAt returns when the reminder was completed, nil if not completed
func (r *Reminder) CompletedAt() *time.Time {
	return r.completedAt
}

// Category returns the display category
func (r *Reminder) Category() string {
	return r.metadata.Category
}

// Priority returns the display priority
func (r *Reminder) Priority() string {
	return r.metadata.Priority
}

// Tags returns a copy of the display tags
func (r *Reminder) Tags() []string {
	tags := make([]string, len(r.metadata.Tags))
	copy(tags, r.metadata.Tags)
	return tags
}

// NotificationID returns the live platform notification identifier, empty
// when no notification is pending
func (r *Reminder) NotificationID() string {
	return r.notificationID
}

// SetNotificationID records the platform notification identifier
func (r *Reminder) SetNotificationID(id string) {
	r.notificationID = id
}

// ClearNotificationID drops the platform notification identifier
func (r *Reminder) ClearNotificationID() {
	r.notificationID = ""
}

// UpdateText changes the reminder text with validation
func (r *Reminder) UpdateText(text valueobjects.ReminderText) error {
	if text.IsEmpty() {
		return pkgerrors.NewValidationError("reminder text cannot be empty")
	}
	if text.Equals(r.text) {
		return nil
	}

	oldText := r.text
	r.text = text

	r.addEvent(events.NewReminderTextUpdated(r.id, oldText.String(), text.String(), time.Now()))
	return nil
}

// Reschedule moves the reminder's notification date
func (r *Reminder) Reschedule(notificationDate valueobjects.NotificationTime) error {
	if notificationDate.IsZero() {
		return pkgerrors.NewValidationError("notification date cannot be zero")
	}
	if notificationDate.Equals(r.notificationDate) {
		return nil
	}

	oldDate := r.notificationDate
	r.notificationDate = notificationDate

	r.addEvent(events.NewReminderRescheduled(r.id, oldDate.Time(), notificationDate.Time(), time.Now()))
	return nil
}

// UpdateMetadata replaces the display-only classification fields
func (r *Reminder) UpdateMetadata(metadata Metadata, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	v := validators.NewReminderValidatorWithConfig(cfg)
	if err := v.ValidatePriority(metadata.Priority); err != nil {
		return err
	}
	if err := v.ValidateTags(metadata.Tags); err != nil {
		return err
	}

	if metadata.Category == "" {
		metadata.Category = r.metadata.Category
	}
	if metadata.Priority == "" {
		metadata.Priority = r.metadata.Priority
	}

	r.metadata = metadata
	return nil
}

// Complete marks the reminder completed and stamps completedAt
func (r *Reminder) Complete() error {
	if r.completed {
		return nil
	}

	now := time.Now()
	r.completed = true
	r.completedAt = &now

	r.addEvent(events.NewReminderCompleted(r.id, now))
	return nil
}

// Reopen clears the completion state and completedAt
func (r *Reminder) Reopen() error {
	if !r.completed {
		return nil
	}

	r.completed = false
	r.completedAt = nil

	r.addEvent(events.NewReminderReopened(r.id, time.Now()))
	return nil
}

// NeedsNotification reports whether this reminder should have a live
// scheduled notification: incomplete with a strictly future delivery time
func (r *Reminder) NeedsNotification(now time.Time) bool {
	return !r.completed && r.notificationDate.IsFuture(now)
}

// GetUncommittedEvents returns all uncommitted domain events
func (r *Reminder) GetUncommittedEvents() []events.DomainEvent {
	return r.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (r *Reminder) MarkEventsAsCommitted() {
	r.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (r *Reminder) addEvent(event events.DomainEvent) {
	r.events = append(r.events, event)
}
