// Package eventbridge publishes domain events to AWS EventBridge and
// dispatches them to in-process subscribers. With a nil client the bus
// degrades to local-only dispatch, which is what development and tests
// run with.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/domain/events"
)

// EventBridge caps a single PutEvents call at 10 entries
const maxPutEventsBatch = 10

const eventSource = "composer.backend"

// EventBridgePublisher implements ports.EventBus on AWS EventBridge
type EventBridgePublisher struct {
	client   *awseventbridge.Client
	busName  string
	logger   *zap.Logger

	mu          sync.RWMutex
	subscribers map[string][]ports.EventHandler
}

// NewEventBridgePublisher creates a new event bus. A nil client disables
// remote publishing.
func NewEventBridgePublisher(client *awseventbridge.Client, busName string, logger *zap.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{
		client:      client,
		busName:     busName,
		logger:      logger,
		subscribers: make(map[string][]ports.EventHandler),
	}
}

var _ ports.EventBus = (*EventBridgePublisher)(nil)

// Publish sends a single event
func (p *EventBridgePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends multiple events. Local subscribers always run;
// remote delivery failures are returned after local dispatch completes.
func (p *EventBridgePublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	for _, event := range batch {
		p.dispatchLocal(ctx, event)
	}

	if p.client == nil {
		return nil
	}
	return p.putEvents(ctx, batch)
}

// Subscribe registers a handler for an event type
func (p *EventBridgePublisher) Subscribe(eventType string, handler ports.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
	return nil
}

// Unsubscribe removes a handler
func (p *EventBridgePublisher) Unsubscribe(eventType string, handler ports.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	handlers := p.subscribers[eventType]
	for i, h := range handlers {
		if h == handler {
			p.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not subscribed to %s", eventType)
}

func (p *EventBridgePublisher) dispatchLocal(ctx context.Context, event events.DomainEvent) {
	p.mu.RLock()
	handlers := append([]ports.EventHandler(nil), p.subscribers[event.GetEventType()]...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			p.logger.Warn("Event handler failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
}

func (p *EventBridgePublisher) putEvents(ctx context.Context, batch []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Warn("Failed to serialize event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
		})
	}

	for start := 0; start < len(entries); start += maxPutEventsBatch {
		end := start + maxPutEventsBatch
		if end > len(entries) {
			end = len(entries)
		}
		out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
			Entries: entries[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
		if out.FailedEntryCount > 0 {
			p.logger.Warn("Some events failed to publish",
				zap.Int32("failed", out.FailedEntryCount),
			)
		}
	}
	return nil
}
