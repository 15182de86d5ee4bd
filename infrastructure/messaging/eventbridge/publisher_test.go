package eventbridge

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
)

// unmarshalable wraps a valid event with a field json.Marshal rejects.
type unmarshalable struct {
	events.BaseEvent
	Payload chan int `json:"payload"`
}

func newTestEvent(t *testing.T, text string) events.ReminderCreated {
	t.Helper()
	id := valueobjects.NewReminderID()
	now := time.Now()
	return events.NewReminderCreated(id, "user-1", text, now.Add(time.Hour), now)
}

func TestBuildEntries_SkipsUnmarshalableAndStaysAligned(t *testing.T) {
	p := &Publisher{eventBusName: "test-bus", logger: zap.NewNop()}

	first := newTestEvent(t, "water the plants")
	bad := unmarshalable{
		BaseEvent: events.BaseEvent{
			EventType: "reminder.created",
			Timestamp: time.Now(),
		},
		Payload: make(chan int),
	}
	last := newTestEvent(t, "call the dentist")

	entries, sent := p.buildEntries([]events.DomainEvent{first, bad, last})

	require.Len(t, entries, 2)
	require.Len(t, sent, 2)

	// the event behind each entry must line up positionally
	assert.Equal(t, first.GetAggregateID(), sent[0].GetAggregateID())
	assert.Equal(t, last.GetAggregateID(), sent[1].GetAggregateID())
	assert.Equal(t, "reminder.created", aws.ToString(entries[0].DetailType))
	assert.Equal(t, "test-bus", aws.ToString(entries[1].EventBusName))
}

func TestBuildEntries_EmptyBatch(t *testing.T) {
	p := &Publisher{eventBusName: "test-bus", logger: zap.NewNop()}

	entries, sent := p.buildEntries(nil)
	assert.Empty(t, entries)
	assert.Empty(t, sent)
}
