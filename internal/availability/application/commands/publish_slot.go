package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
)

// PublishSlotCommand publishes a caregiver's availability for a date.
type PublishSlotCommand struct {
	Caregiver string
	Date      time.Time
}

// PublishSlotHandler handles the PublishSlotCommand.
type PublishSlotHandler struct {
	slotRepo   domain.SlotRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	metrics    observability.Metrics
}

// NewPublishSlotHandler creates a new PublishSlotHandler.
func NewPublishSlotHandler(slotRepo domain.SlotRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, metrics observability.Metrics) *PublishSlotHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &PublishSlotHandler{
		slotRepo:   slotRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		metrics:    metrics,
	}
}

// Handle executes the PublishSlotCommand.
func (h *PublishSlotHandler) Handle(ctx context.Context, cmd PublishSlotCommand) error {
	slot := domain.NewSlot(cmd.Caregiver, cmd.Date)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.slotRepo.Publish(txCtx, slot); err != nil {
			return err
		}

		event := domain.NewSlotPublished(slot.Caregiver(), slot.DateString())
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, cmd.Caregiver))
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		return h.outboxRepo.Save(txCtx, msg)
	})
	if err != nil {
		return err
	}

	h.metrics.Counter(observability.MetricSlotsPublished, 1)
	return nil
}
