package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/ports"
	"pingwards-backend/domain/config"
	"pingwards-backend/domain/core/entities"
	"pingwards-backend/domain/core/validators"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
	pkgerrors "pingwards-backend/pkg/errors"
	"pingwards-backend/pkg/observability"
)

const lockStripes = 64

// ReminderLifecycleService is the single owner of the reminder ->
// notification mapping and the cancel-before-reschedule discipline.
// Nothing else talks to the scheduler about a specific reminder.
//
// Scheduling failures are non-fatal: the stored reminder is the source
// of truth and a missed notification is recoverable, so a Schedule or
// Cancel error is logged and swallowed rather than rolling back the
// write. Storage and validation errors propagate.
type ReminderLifecycleService struct {
	repo      ports.ReminderRepository
	scheduler ports.NotificationScheduler
	eventBus  ports.EventBus
	cfg       *config.DomainConfig
	logger    *zap.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer

	// reminderID -> notificationID, rebuilt by RestoreSchedules.
	// The persisted NotificationID field is the durable copy; this map
	// avoids a read before every cancel.
	mu            sync.RWMutex
	notifications map[string]string

	// per-reminder serialization: concurrent operations on the same id
	// would otherwise race between cancel and reschedule
	stripes [lockStripes]sync.Mutex
}

// NewReminderLifecycleService creates the lifecycle service
func NewReminderLifecycleService(
	repo ports.ReminderRepository,
	scheduler ports.NotificationScheduler,
	eventBus ports.EventBus,
	cfg *config.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) *ReminderLifecycleService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ReminderLifecycleService{
		repo:          repo,
		scheduler:     scheduler,
		eventBus:      eventBus,
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		notifications: make(map[string]string),
	}
}

func (s *ReminderLifecycleService) lockFor(reminderID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(reminderID))
	return &s.stripes[h.Sum32()%lockStripes]
}

// CreateReminder validates, stores and schedules a new reminder.
// The returned entity reflects what was persisted, including the
// notification id when scheduling succeeded.
func (s *ReminderLifecycleService) CreateReminder(ctx context.Context, cmd commands.CreateReminderCommand) (*entities.Reminder, error) {
	var reminder *entities.Reminder
	err := s.tracer.TraceFunction(ctx, "reminder.create", func(ctx context.Context) error {
		id, err := valueobjects.NewReminderIDFromString(cmd.ReminderID)
		if err != nil {
			return pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
		}

		text, err := valueobjects.NewReminderTextWithConfig(cmd.Text, s.cfg)
		if err != nil {
			return err
		}

		notificationDate, err := valueobjects.NewNotificationTime(cmd.NotificationDate)
		if err != nil {
			return err
		}

		metadata := entities.Metadata{
			Category: cmd.Category,
			Priority: cmd.Priority,
			Tags:     cmd.Tags,
		}

		reminder, err = entities.NewReminderWithConfig(id, cmd.UserID, text, notificationDate, metadata, s.cfg)
		if err != nil {
			return err
		}

		lock := s.lockFor(reminder.ID().String())
		lock.Lock()
		defer lock.Unlock()

		if err := s.repo.Create(ctx, reminder); err != nil {
			return err
		}

		s.scheduleAndRecord(ctx, reminder)
		s.publishEvents(ctx, reminder)

		s.metrics.IncrementCounter(ctx, "RemindersCreated", map[string]string{"UserID": cmd.UserID})
		s.logger.Info("reminder created",
			zap.String("reminderID", reminder.ID().String()),
			zap.String("userID", cmd.UserID),
			zap.Time("notificationDate", reminder.NotificationDate().Time()),
			zap.String("notificationID", reminder.NotificationID()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// EditReminder applies a partial update. When the notification date
// changes, or the text changes while a notification is live, the old
// notification is cancelled and a new one issued for the merged state.
func (s *ReminderLifecycleService) EditReminder(ctx context.Context, cmd commands.UpdateReminderCommand) (*entities.Reminder, error) {
	var reminder *entities.Reminder
	err := s.tracer.TraceFunction(ctx, "reminder.edit", func(ctx context.Context) error {
		id, err := valueobjects.NewReminderIDFromString(cmd.ReminderID)
		if err != nil {
			return pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
		}

		lock := s.lockFor(cmd.ReminderID)
		lock.Lock()
		defer lock.Unlock()

		reminder, err = s.getOwned(ctx, id, cmd.UserID)
		if err != nil {
			return err
		}

		changes := ports.ReminderChanges{}
		dateChanged := false
		textChanged := false

		if cmd.Text != nil {
			text, err := valueobjects.NewReminderTextWithConfig(*cmd.Text, s.cfg)
			if err != nil {
				return err
			}
			if !text.Equals(reminder.Text()) {
				textChanged = true
			}
			if err := reminder.UpdateText(text); err != nil {
				return err
			}
			changes.Text = cmd.Text
		}

		if cmd.NotificationDate != nil {
			v := validators.NewReminderValidatorWithConfig(s.cfg)
			if err := v.ValidateNotificationDate(*cmd.NotificationDate, time.Now()); err != nil {
				return err
			}
			notificationDate, err := valueobjects.NewNotificationTime(*cmd.NotificationDate)
			if err != nil {
				return err
			}
			if !notificationDate.Equals(reminder.NotificationDate()) {
				dateChanged = true
			}
			if err := reminder.Reschedule(notificationDate); err != nil {
				return err
			}
			changes.NotificationDate = cmd.NotificationDate
		}

		if cmd.Category != nil || cmd.Priority != nil || cmd.Tags != nil {
			metadata := entities.Metadata{
				Category: reminder.Category(),
				Priority: reminder.Priority(),
				Tags:     reminder.Tags(),
			}
			if cmd.Category != nil {
				metadata.Category = *cmd.Category
				changes.Category = cmd.Category
			}
			if cmd.Priority != nil {
				metadata.Priority = *cmd.Priority
				changes.Priority = cmd.Priority
			}
			if cmd.Tags != nil {
				metadata.Tags = *cmd.Tags
				changes.Tags = cmd.Tags
			}
			if err := reminder.UpdateMetadata(metadata, s.cfg); err != nil {
				return err
			}
		}

		if changes.IsEmpty() {
			return nil
		}

		if err := s.repo.Update(ctx, id, changes); err != nil {
			return err
		}

		if dateChanged || (textChanged && s.liveNotificationID(reminder) != "") {
			s.cancelAndForget(ctx, reminder)
			s.scheduleAndRecord(ctx, reminder)
		}

		s.publishEvents(ctx, reminder)

		s.logger.Info("reminder updated",
			zap.String("reminderID", cmd.ReminderID),
			zap.String("userID", cmd.UserID),
			zap.Bool("dateChanged", dateChanged),
			zap.Bool("textChanged", textChanged),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// DeleteReminder cancels the pending notification first, then removes
// the record. Deleting an unknown id is a no-op.
func (s *ReminderLifecycleService) DeleteReminder(ctx context.Context, cmd commands.DeleteReminderCommand) error {
	return s.tracer.TraceFunction(ctx, "reminder.delete", func(ctx context.Context) error {
		id, err := valueobjects.NewReminderIDFromString(cmd.ReminderID)
		if err != nil {
			return pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
		}

		lock := s.lockFor(cmd.ReminderID)
		lock.Lock()
		defer lock.Unlock()

		reminder, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		if reminder.UserID() != cmd.UserID {
			return pkgerrors.NewNotFoundError("reminder")
		}

		s.cancelAndForget(ctx, reminder)

		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}

		if err := s.eventBus.Publish(ctx, events.NewReminderDeleted(id, cmd.UserID, time.Now())); err != nil {
			s.logger.Warn("failed to publish delete event",
				zap.String("reminderID", cmd.ReminderID),
				zap.Error(err),
			)
		}

		s.metrics.IncrementCounter(ctx, "RemindersDeleted", map[string]string{"UserID": cmd.UserID})
		s.logger.Info("reminder deleted",
			zap.String("reminderID", cmd.ReminderID),
			zap.String("userID", cmd.UserID),
		)
		return nil
	})
}

// ToggleComplete flips completion. Completing cancels the pending
// notification; reopening reschedules when the delivery time is still
// ahead, and leaves past-dated reminders unscheduled.
func (s *ReminderLifecycleService) ToggleComplete(ctx context.Context, cmd commands.ToggleCompleteCommand) (*entities.Reminder, error) {
	var reminder *entities.Reminder
	err := s.tracer.TraceFunction(ctx, "reminder.toggle_complete", func(ctx context.Context) error {
		id, err := valueobjects.NewReminderIDFromString(cmd.ReminderID)
		if err != nil {
			return pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
		}

		lock := s.lockFor(cmd.ReminderID)
		lock.Lock()
		defer lock.Unlock()

		reminder, err = s.getOwned(ctx, id, cmd.UserID)
		if err != nil {
			return err
		}

		completing := !reminder.Completed()
		if completing {
			if err := reminder.Complete(); err != nil {
				return err
			}
		} else {
			if err := reminder.Reopen(); err != nil {
				return err
			}
		}

		completed := reminder.Completed()
		changes := ports.ReminderChanges{Completed: &completed}
		if completing {
			changes.CompletedAt = reminder.CompletedAt()
		} else {
			changes.ClearCompletedAt = true
		}

		if err := s.repo.Update(ctx, id, changes); err != nil {
			return err
		}

		if completing {
			s.cancelAndForget(ctx, reminder)
		} else {
			s.scheduleAndRecord(ctx, reminder)
		}

		s.publishEvents(ctx, reminder)

		s.logger.Info("reminder completion toggled",
			zap.String("reminderID", cmd.ReminderID),
			zap.String("userID", cmd.UserID),
			zap.Bool("completed", completed),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// SnoozeReminder pushes the notification forward by the configured
// snooze interval, reissuing the notification for the new time.
func (s *ReminderLifecycleService) SnoozeReminder(ctx context.Context, cmd commands.SnoozeReminderCommand) (*entities.Reminder, error) {
	var reminder *entities.Reminder
	err := s.tracer.TraceFunction(ctx, "reminder.snooze", func(ctx context.Context) error {
		id, err := valueobjects.NewReminderIDFromString(cmd.ReminderID)
		if err != nil {
			return pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
		}

		lock := s.lockFor(cmd.ReminderID)
		lock.Lock()
		defer lock.Unlock()

		reminder, err = s.getOwned(ctx, id, cmd.UserID)
		if err != nil {
			return err
		}

		snoozed := reminder.NotificationDate().Add(s.cfg.SnoozeInterval)
		if err := reminder.Reschedule(snoozed); err != nil {
			return err
		}

		newDate := snoozed.Time()
		if err := s.repo.Update(ctx, id, ports.ReminderChanges{NotificationDate: &newDate}); err != nil {
			return err
		}

		s.cancelAndForget(ctx, reminder)
		s.scheduleAndRecord(ctx, reminder)
		s.publishEvents(ctx, reminder)

		s.metrics.IncrementCounter(ctx, "RemindersSnoozed", map[string]string{"UserID": cmd.UserID})
		s.logger.Info("reminder snoozed",
			zap.String("reminderID", cmd.ReminderID),
			zap.Time("notificationDate", newDate),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// CancelAllForLogout wipes every pending notification and the mapping.
// Like every other scheduler call, a platform failure is logged and
// swallowed; the mapping and stored ids are cleared regardless, and
// stale platform entries are repaired by RestoreSchedules.
func (s *ReminderLifecycleService) CancelAllForLogout(ctx context.Context, userID string) error {
	if err := s.scheduler.CancelAll(ctx); err != nil {
		s.metrics.IncrementCounter(ctx, "SchedulingFailures", nil)
		s.logger.Error("failed to cancel all notifications",
			zap.String("userID", userID),
			zap.Error(err),
		)
	}

	s.mu.Lock()
	s.notifications = make(map[string]string)
	s.mu.Unlock()

	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list reminders while clearing notification ids",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil
	}

	empty := ""
	for _, r := range reminders {
		if r.NotificationID() == "" {
			continue
		}
		if err := s.repo.Update(ctx, r.ID(), ports.ReminderChanges{NotificationID: &empty}); err != nil {
			s.logger.Warn("failed to clear stored notification id",
				zap.String("reminderID", r.ID().String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("cancelled all notifications", zap.String("userID", userID))
	return nil
}

// RestoreSchedules rebuilds the in-memory mapping from stored records
// and reconciles against the platform's pending queue: reminders that
// should fire but lost their platform entry are rescheduled, entries
// for completed or past-dated reminders are cancelled. Called once at
// startup.
func (s *ReminderLifecycleService) RestoreSchedules(ctx context.Context) error {
	reminders, err := s.repo.ListScheduled(ctx)
	if err != nil {
		return err
	}

	pending, err := s.scheduler.ListPending(ctx)
	if err != nil {
		return pkgerrors.NewSchedulingError("list_pending", err)
	}
	live := make(map[string]bool, len(pending))
	for _, p := range pending {
		live[p.ID] = true
	}

	now := time.Now()
	restored, reissued, cancelled := 0, 0, 0

	for _, r := range reminders {
		notifID := r.NotificationID()
		switch {
		case r.NeedsNotification(now) && live[notifID]:
			s.mu.Lock()
			s.notifications[r.ID().String()] = notifID
			s.mu.Unlock()
			restored++

		case r.NeedsNotification(now):
			// platform entry lost, reissue
			s.scheduleAndRecord(ctx, r)
			reissued++

		default:
			// completed or past-dated; the entry should not fire
			if live[notifID] {
				if err := s.scheduler.Cancel(ctx, notifID); err != nil {
					s.logger.Warn("failed to cancel stale notification",
						zap.String("notificationID", notifID),
						zap.Error(err),
					)
				}
			}
			empty := ""
			if err := s.repo.Update(ctx, r.ID(), ports.ReminderChanges{NotificationID: &empty}); err != nil {
				s.logger.Warn("failed to clear stale notification id",
					zap.String("reminderID", r.ID().String()),
					zap.Error(err),
				)
			}
			cancelled++
		}
	}

	s.logger.Info("schedules restored",
		zap.Int("restored", restored),
		zap.Int("reissued", reissued),
		zap.Int("cancelled", cancelled),
	)
	return nil
}

// getOwned loads a reminder and verifies ownership. A reminder owned
// by someone else reads as not found rather than forbidden.
func (s *ReminderLifecycleService) getOwned(ctx context.Context, id valueobjects.ReminderID, userID string) (*entities.Reminder, error) {
	reminder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.UserID() != userID {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}
	return reminder, nil
}

// scheduleAndRecord asks the platform for a notification and records
// the mapping. A "" id (past date or no permission) clears the mapping;
// a platform error is logged and swallowed. The stored NotificationID
// is updated best-effort; the write already committed.
func (s *ReminderLifecycleService) scheduleAndRecord(ctx context.Context, reminder *entities.Reminder) {
	if !reminder.NeedsNotification(time.Now()) {
		return
	}

	notifID, err := s.scheduler.Schedule(ctx, reminder.NotificationDate().Time(), reminder.Text().String())
	if err != nil {
		s.metrics.IncrementCounter(ctx, "SchedulingFailures", nil)
		s.logger.Error("failed to schedule notification",
			zap.String("reminderID", reminder.ID().String()),
			zap.Time("fireAt", reminder.NotificationDate().Time()),
			zap.Error(err),
		)
		return
	}

	key := reminder.ID().String()
	s.mu.Lock()
	if notifID == "" {
		delete(s.notifications, key)
	} else {
		s.notifications[key] = notifID
	}
	s.mu.Unlock()

	reminder.SetNotificationID(notifID)
	if err := s.repo.Update(ctx, reminder.ID(), ports.ReminderChanges{NotificationID: &notifID}); err != nil {
		s.logger.Warn("failed to persist notification id",
			zap.String("reminderID", key),
			zap.String("notificationID", notifID),
			zap.Error(err),
		)
	}
}

// cancelAndForget cancels whatever notification is mapped for the
// reminder and drops the mapping, including the persisted copy.
// Cancellation failure is logged and swallowed; a dangling platform
// entry is harmless next to a wrong store state.
func (s *ReminderLifecycleService) cancelAndForget(ctx context.Context, reminder *entities.Reminder) {
	notifID := s.liveNotificationID(reminder)

	key := reminder.ID().String()
	s.mu.Lock()
	delete(s.notifications, key)
	s.mu.Unlock()
	reminder.ClearNotificationID()

	if notifID == "" {
		return
	}

	if err := s.scheduler.Cancel(ctx, notifID); err != nil {
		s.metrics.IncrementCounter(ctx, "SchedulingFailures", nil)
		s.logger.Error("failed to cancel notification",
			zap.String("reminderID", key),
			zap.String("notificationID", notifID),
			zap.Error(err),
		)
	}

	empty := ""
	if err := s.repo.Update(ctx, reminder.ID(), ports.ReminderChanges{NotificationID: &empty}); err != nil {
		s.logger.Warn("failed to clear stored notification id",
			zap.String("reminderID", key),
			zap.Error(err),
		)
	}
}

// liveNotificationID resolves the notification mapped to a reminder,
// preferring the in-memory map over the stored field.
func (s *ReminderLifecycleService) liveNotificationID(reminder *entities.Reminder) string {
	s.mu.RLock()
	notifID, ok := s.notifications[reminder.ID().String()]
	s.mu.RUnlock()
	if ok {
		return notifID
	}
	return reminder.NotificationID()
}

// publishEvents flushes the entity's uncommitted events to the bus.
// Publishing is best-effort; consumers tolerate gaps.
func (s *ReminderLifecycleService) publishEvents(ctx context.Context, reminder *entities.Reminder) {
	batch := reminder.GetUncommittedEvents()
	if len(batch) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("reminderID", reminder.ID().String()),
			zap.Int("eventCount", len(batch)),
			zap.Error(err),
		)
		return
	}
	reminder.MarkEventsAsCommitted()
}
