package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConsumedEvent is the envelope delivered to in-process consumers.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateKey  string          `json:"aggregate_key"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler processes a consumed event.
type EventHandler func(ctx context.Context, event *ConsumedEvent) error

// InProcessEventBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered handlers.
type InProcessEventBus struct {
	handlers map[string][]EventHandler
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given routing key.
func (b *InProcessEventBus) Subscribe(routingKey string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish dispatches the payload synchronously to all handlers registered
// for the routing key. Handler failures are logged, not propagated, so a
// misbehaving consumer cannot stall outbox processing.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Payload = payload

	b.mu.RLock()
	handlers := b.handlers[routingKey]
	b.mu.RUnlock()

	start := time.Now()
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", routingKey,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"handlers", len(handlers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}
