package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"pingwards-backend/application/ports"
	"pingwards-backend/domain/events"
)

// EventSource identifies this service on the bus
const EventSource = "pingwards.reminders"

// Publisher implements ports.EventBus on AWS EventBridge
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventBus {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of ten, the PutEvents limit
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	const batchSize = 10
	for i := 0; i < len(batch); i += batchSize {
		end := i + batchSize
		if end > len(batch) {
			end = len(batch)
		}
		if err := p.putEvents(ctx, batch[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) putEvents(ctx context.Context, batch []events.DomainEvent) error {
	entries, sent := p.buildEntries(batch)
	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}

	if result.FailedEntryCount > 0 {
		// result.Entries is positional with the request entries, so the
		// failed index maps onto sent, not onto the original batch.
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("event rejected by EventBridge",
					zap.String("eventType", sent[i].GetEventType()),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d of %d events failed to publish", result.FailedEntryCount, len(entries))
	}

	return nil
}

// buildEntries marshals the batch into PutEvents request entries, skipping
// events that fail to serialize. The second return value holds the events
// behind each entry, index-aligned with the first.
func (p *Publisher) buildEntries(batch []events.DomainEvent) ([]types.PutEventsRequestEntry, []events.DomainEvent) {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	sent := make([]events.DomainEvent, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("failed to marshal event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
			continue
		}

		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(EventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
		sent = append(sent, event)
	}
	return entries, sent
}
