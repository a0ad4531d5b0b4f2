package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/vaxsched/internal/shared/domain"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("generates a correlation ID", func(t *testing.T) {
		metadata := NewEventMetadata(context.Background(), "alice")

		assert.Equal(t, "alice", metadata.Actor)
		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
	})

	t.Run("reuses the correlation ID from context", func(t *testing.T) {
		id := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), id.String())

		metadata := NewEventMetadata(ctx, "alice")
		assert.Equal(t, id, metadata.CorrelationID)
	})

	t.Run("distinct calls get distinct IDs", func(t *testing.T) {
		first := NewEventMetadata(context.Background(), "alice")
		second := NewEventMetadata(context.Background(), "alice")
		assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
	})
}

type metadataEvent struct {
	domain.BaseEvent
}

func TestApplyEventMetadata(t *testing.T) {
	base := domain.NewBaseEvent("alice", "Account", "identity.account.registered")
	event := &metadataEvent{BaseEvent: base}

	metadata := NewEventMetadata(context.Background(), "alice")
	ApplyEventMetadata([]domain.DomainEvent{event}, metadata)

	require.Equal(t, metadata.CorrelationID, event.Metadata().CorrelationID)
	assert.Equal(t, "alice", event.Metadata().Actor)
}
