package events

import (
	"time"

	"pingwards-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Reminder events

// ReminderCreated is raised when a new reminder is created
type ReminderCreated struct {
	BaseEvent
	ReminderID       valueobjects.ReminderID `json:"reminder_id"`
	UserID           string                  `json:"user_id"`
	Text             string                  `json:"text"`
	NotificationDate time.Time               `json:"notification_date"`
}

// NewReminderCreated creates a ReminderCreated event
func NewReminderCreated(id valueobjects.ReminderID, userID, text string, notificationDate, timestamp time.Time) ReminderCreated {
	return ReminderCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ReminderID:       id,
		UserID:           userID,
		Text:             text,
		NotificationDate: notificationDate,
	}
}

// ReminderRescheduled is raised when a reminder's notification date changes
type ReminderRescheduled struct {
	BaseEvent
	ReminderID valueobjects.ReminderID `json:"reminder_id"`
	OldDate    time.Time               `json:"old_date"`
	NewDate    time.Time               `json:"new_date"`
}

// NewReminderRescheduled creates a ReminderRescheduled event
func NewReminderRescheduled(id valueobjects.ReminderID, oldDate, newDate, timestamp time.Time) ReminderRescheduled {
	return ReminderRescheduled{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.rescheduled",
			Timestamp:   timestamp,
			Version:     1,
		},
		ReminderID: id,
		OldDate:    oldDate,
		NewDate:    newDate,
	}
}

// ReminderTextUpdated is raised when a reminder's text changes
type ReminderTextUpdated struct {
	BaseEvent
	ReminderID valueobjects.ReminderID `json:"reminder_id"`
	OldText    string                  `json:"old_text"`
	NewText    string                  `json:"new_text"`
}

// NewReminderTextUpdated creates a ReminderTextUpdated event
func NewReminderTextUpdated(id valueobjects.ReminderID, oldText, newText string, timestamp time.Time) ReminderTextUpdated {
	return ReminderTextUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.text_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		ReminderID: id,
		OldText:    oldText,
		NewText:    newText,
	}
}

// ReminderCompleted is raised when a reminder transitions to completed
type ReminderCompleted struct {
	BaseEvent
	ReminderID  valueobjects.ReminderID `json:"reminder_id"`
	CompletedAt time.Time               `json:"completed_at"`
}

// NewReminderCompleted creates a ReminderCompleted event
func NewReminderCompleted(id valueobjects.ReminderID, completedAt time.Time) ReminderCompleted {
	return ReminderCompleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.completed",
			Timestamp:   completedAt,
			Version:     1,
		},
		ReminderID:  id,
		CompletedAt: completedAt,
	}
}

// ReminderReopened is raised when a completed reminder is un-completed
type ReminderReopened struct {
	BaseEvent
	ReminderID valueobjects.ReminderID `json:"reminder_id"`
}

// NewReminderReopened creates a ReminderReopened event
func NewReminderReopened(id valueobjects.ReminderID, timestamp time.Time) ReminderReopened {
	return ReminderReopened{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.reopened",
			Timestamp:   timestamp,
			Version:     1,
		},
		ReminderID: id,
	}
}

// ReminderDeleted is raised when a reminder is removed
type ReminderDeleted struct {
	BaseEvent
	ReminderID valueobjects.ReminderID `json:"reminder_id"`
	UserID     string                  `json:"user_id"`
}

// NewReminderDeleted creates a ReminderDeleted event
func NewReminderDeleted(id valueobjects.ReminderID, userID string, timestamp time.Time) ReminderDeleted {
	return ReminderDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "reminder.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		ReminderID: id,
		UserID:     userID,
	}
}
