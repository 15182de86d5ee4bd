package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ReminderID is a value object representing a unique reminder identifier.
// The identifier is assigned once on creation, is stable for the record's
// lifetime and is never reused after deletion.
type ReminderID struct {
	value string
}

// NewReminderID creates a new random ReminderID
func NewReminderID() ReminderID {
	return ReminderID{value: uuid.New().String()}
}

// NewReminderIDFromString creates a ReminderID from an existing string
func NewReminderIDFromString(id string) (ReminderID, error) {
	if id == "" {
		return ReminderID{}, errors.New("reminder ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ReminderID{}, errors.New("reminder ID must be a valid UUID")
	}
	return ReminderID{value: id}, nil
}

// String returns the string representation of the ReminderID
func (id ReminderID) String() string {
	return id.value
}

// Equals checks if two ReminderIDs are equal
func (id ReminderID) Equals(other ReminderID) bool {
	return id.value == other.value
}

// IsZero checks if the ReminderID is the zero value
func (id ReminderID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ReminderID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ReminderID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ReminderID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
