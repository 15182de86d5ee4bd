package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pingwards-backend/domain/config"
	pkgerrors "pingwards-backend/pkg/errors"
)

// ReminderText is a value object for the user-supplied reminder text.
// The text doubles as the notification body when the reminder fires.
type ReminderText struct {
	value string
}

// NewReminderText creates reminder text with validation using default configuration
func NewReminderText(text string) (ReminderText, error) {
	return NewReminderTextWithConfig(text, config.DefaultDomainConfig())
}

// NewReminderTextWithConfig creates reminder text with validation and configuration
func NewReminderTextWithConfig(text string, cfg *config.DomainConfig) (ReminderText, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return ReminderText{}, pkgerrors.NewValidationError("reminder text cannot be empty")
	}

	length := utf8.RuneCountInString(text)
	if length < cfg.MinTextLength {
		return ReminderText{}, pkgerrors.NewValidationError(fmt.Sprintf("reminder text too short: minimum %d characters required", cfg.MinTextLength))
	}
	if length > cfg.MaxTextLength {
		return ReminderText{}, pkgerrors.NewValidationError(fmt.Sprintf("reminder text exceeds maximum length of %d characters", cfg.MaxTextLength))
	}

	return ReminderText{value: text}, nil
}

// String returns the reminder text
func (t ReminderText) String() string {
	return t.value
}

// IsEmpty checks if the text is empty
func (t ReminderText) IsEmpty() bool {
	return t.value == ""
}

// Equals checks if two texts are equal
func (t ReminderText) Equals(other ReminderText) bool {
	return t.value == other.value
}

// Summary returns a truncated form suitable for log fields and rule descriptions
func (t ReminderText) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(t.value) <= maxLength {
		return t.value
	}
	runes := []rune(t.value)
	return string(runes[:maxLength-3]) + "..."
}
