package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotificationTime_RFC3339(t *testing.T) {
	nt, err := ParseNotificationTime("2026-10-05T14:30:00Z")
	require.NoError(t, err)

	assert.Equal(t, 2026, nt.Time().Year())
	assert.Equal(t, time.October, nt.Time().Month())
	assert.Equal(t, 14, nt.Time().UTC().Hour())
	assert.Equal(t, 30, nt.Time().UTC().Minute())
}

func TestParseNotificationTime_DateOnlyNormalizesToLocalMidnight(t *testing.T) {
	nt, err := ParseNotificationTime("2026-10-05")
	require.NoError(t, err)

	local := nt.Time()
	assert.Equal(t, 2026, local.Year())
	assert.Equal(t, time.October, local.Month())
	assert.Equal(t, 5, local.Day())
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, time.Local, local.Location())
}

func TestParseNotificationTime_Invalid(t *testing.T) {
	_, err := ParseNotificationTime("next tuesday")
	assert.Error(t, err)

	_, err = ParseNotificationTime("")
	assert.Error(t, err)
}

func TestNotificationTime_IsFuture(t *testing.T) {
	now := time.Now()

	future, err := NewNotificationTime(now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, future.IsFuture(now))

	past, err := NewNotificationTime(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, past.IsFuture(now))

	// the boundary instant is not future
	same, err := NewNotificationTime(now)
	require.NoError(t, err)
	assert.False(t, same.IsFuture(now))
}

func TestNotificationTime_Add(t *testing.T) {
	base, err := ParseNotificationTime("2026-10-05T14:30:00Z")
	require.NoError(t, err)

	snoozed := base.Add(10 * time.Minute)
	assert.Equal(t, 40, snoozed.Time().UTC().Minute())
	assert.False(t, snoozed.Equals(base))
}
