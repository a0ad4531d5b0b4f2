package application

import (
	"context"

	"github.com/felixgeelhaar/vaxsched/internal/shared/domain"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata for domain events.
// The actor is the username driving the command, if any. The correlation
// ID is taken from the context when the caller carries one.
func NewEventMetadata(ctx context.Context, actor string) domain.EventMetadata {
	correlationID := uuid.New()
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			correlationID = parsed
		}
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		Actor:         actor,
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
