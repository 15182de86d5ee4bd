package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingwards-backend/domain/core/valueobjects"
)

func newTestReminder(t *testing.T) *Reminder {
	t.Helper()

	text, err := valueobjects.NewReminderText("water the plants")
	require.NoError(t, err)

	date, err := valueobjects.NewNotificationTime(time.Now().Add(2 * time.Hour))
	require.NoError(t, err)

	reminder, err := NewReminder(valueobjects.ReminderID{}, "user123", text, date, Metadata{})
	require.NoError(t, err)
	return reminder
}

func TestNewReminder_AssignsIDAndDefaults(t *testing.T) {
	reminder := newTestReminder(t)

	assert.False(t, reminder.ID().IsZero())
	assert.False(t, reminder.Completed())
	assert.Nil(t, reminder.CompletedAt())
	assert.Equal(t, "General", reminder.Category())
	assert.Equal(t, "Medium", reminder.Priority())
	assert.Empty(t, reminder.NotificationID())

	events := reminder.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reminder.created", events[0].GetEventType())
}

func TestNewReminder_KeepsProvidedID(t *testing.T) {
	id := valueobjects.NewReminderID()
	text, err := valueobjects.NewReminderText("call dentist")
	require.NoError(t, err)
	date, err := valueobjects.NewNotificationTime(time.Now().Add(time.Hour))
	require.NoError(t, err)

	reminder, err := NewReminder(id, "user123", text, date, Metadata{})
	require.NoError(t, err)
	assert.True(t, reminder.ID().Equals(id))
}

func TestNewReminder_Validation(t *testing.T) {
	text, err := valueobjects.NewReminderText("anything")
	require.NoError(t, err)
	date, err := valueobjects.NewNotificationTime(time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = NewReminder(valueobjects.ReminderID{}, "", text, date, Metadata{})
	assert.Error(t, err)

	_, err = NewReminder(valueobjects.ReminderID{}, "user123", valueobjects.ReminderText{}, date, Metadata{})
	assert.Error(t, err)

	_, err = NewReminder(valueobjects.ReminderID{}, "user123", text, valueobjects.NotificationTime{}, Metadata{})
	assert.Error(t, err)

	_, err = NewReminder(valueobjects.ReminderID{}, "user123", text, date, Metadata{Priority: "Urgent"})
	assert.Error(t, err)

	farOut, err := valueobjects.NewNotificationTime(time.Now().Add(366 * 24 * time.Hour))
	require.NoError(t, err)
	_, err = NewReminder(valueobjects.ReminderID{}, "user123", text, farOut, Metadata{})
	assert.Error(t, err)
}

func TestReminder_UpdateText(t *testing.T) {
	reminder := newTestReminder(t)
	reminder.MarkEventsAsCommitted()

	// same text is a no-op, no event
	same, err := valueobjects.NewReminderText("water the plants")
	require.NoError(t, err)
	require.NoError(t, reminder.UpdateText(same))
	assert.Empty(t, reminder.GetUncommittedEvents())

	changed, err := valueobjects.NewReminderText("water the plants twice")
	require.NoError(t, err)
	require.NoError(t, reminder.UpdateText(changed))
	assert.Equal(t, "water the plants twice", reminder.Text().String())

	events := reminder.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reminder.text_updated", events[0].GetEventType())
}

func TestReminder_Reschedule(t *testing.T) {
	reminder := newTestReminder(t)
	reminder.MarkEventsAsCommitted()

	// identical instant is a no-op
	require.NoError(t, reminder.Reschedule(reminder.NotificationDate()))
	assert.Empty(t, reminder.GetUncommittedEvents())

	newDate, err := valueobjects.NewNotificationTime(time.Now().Add(48 * time.Hour))
	require.NoError(t, err)
	require.NoError(t, reminder.Reschedule(newDate))
	assert.True(t, reminder.NotificationDate().Equals(newDate))

	events := reminder.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reminder.rescheduled", events[0].GetEventType())
}

func TestReminder_CompleteAndReopen(t *testing.T) {
	reminder := newTestReminder(t)
	reminder.MarkEventsAsCommitted()

	require.NoError(t, reminder.Complete())
	assert.True(t, reminder.Completed())
	require.NotNil(t, reminder.CompletedAt())
	assert.WithinDuration(t, time.Now(), *reminder.CompletedAt(), time.Second)

	// completing twice stays a no-op
	require.NoError(t, reminder.Complete())
	assert.Len(t, reminder.GetUncommittedEvents(), 1)

	require.NoError(t, reminder.Reopen())
	assert.False(t, reminder.Completed())
	assert.Nil(t, reminder.CompletedAt())
	assert.Len(t, reminder.GetUncommittedEvents(), 2)
}

func TestReminder_NeedsNotification(t *testing.T) {
	reminder := newTestReminder(t)
	now := time.Now()

	assert.True(t, reminder.NeedsNotification(now))

	require.NoError(t, reminder.Complete())
	assert.False(t, reminder.NeedsNotification(now))

	require.NoError(t, reminder.Reopen())
	assert.False(t, reminder.NeedsNotification(now.Add(72*time.Hour)))
}

func TestReminder_NotificationID(t *testing.T) {
	reminder := newTestReminder(t)

	reminder.SetNotificationID("notif-1")
	assert.Equal(t, "notif-1", reminder.NotificationID())

	reminder.ClearNotificationID()
	assert.Empty(t, reminder.NotificationID())
}
