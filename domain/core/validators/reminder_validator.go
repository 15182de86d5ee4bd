package validators

import (
	"strings"
	"time"
	"unicode/utf8"

	"pingwards-backend/domain/config"
	pkgerrors "pingwards-backend/pkg/errors"
)

// ReminderValidator validates reminder-related domain rules on raw input
// before value objects are constructed
type ReminderValidator struct {
	cfg *config.DomainConfig
}

// NewReminderValidator creates a validator with default rules
func NewReminderValidator() *ReminderValidator {
	return NewReminderValidatorWithConfig(nil)
}

// NewReminderValidatorWithConfig creates a validator with the given rules
func NewReminderValidatorWithConfig(cfg *config.DomainConfig) *ReminderValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ReminderValidator{cfg: cfg}
}

// ValidateNotificationDate checks the delivery instant is concrete and not
// absurdly far out
func (v *ReminderValidator) ValidateNotificationDate(t time.Time, now time.Time) error {
	if t.IsZero() {
		return pkgerrors.NewValidationError("notification date is required")
	}
	if t.After(now.Add(v.cfg.MaxScheduleHorizon)) {
		return pkgerrors.NewValidationError("notification date is too far in the future")
	}
	return nil
}

// ValidateTags checks tag count and individual tag lengths
func (v *ReminderValidator) ValidateTags(tags []string) error {
	if len(tags) > v.cfg.MaxTagsPerReminder {
		return pkgerrors.NewValidationError("too many tags")
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return pkgerrors.NewValidationError("tags cannot be empty")
		}
		if utf8.RuneCountInString(tag) > v.cfg.MaxTagLength {
			return pkgerrors.NewValidationError("tag too long")
		}
	}
	return nil
}

// ValidatePriority checks the priority level against the allowed set
func (v *ReminderValidator) ValidatePriority(priority string) error {
	if !v.cfg.IsAllowedPriority(priority) {
		return pkgerrors.NewValidationError("unknown priority level")
	}
	return nil
}
