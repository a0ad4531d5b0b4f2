package commands

import (
	"context"

	"github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
)

// AddDosesCommand restocks a vaccine lot, creating it when absent.
type AddDosesCommand struct {
	Actor   string
	Vaccine string
	Count   int
}

// AddDosesResult reports the lot after the restock.
type AddDosesResult struct {
	Vaccine    string
	TotalDoses int
}

// AddDosesHandler handles the AddDosesCommand.
type AddDosesHandler struct {
	vaccineRepo domain.VaccineRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	metrics     observability.Metrics
}

// NewAddDosesHandler creates a new AddDosesHandler.
func NewAddDosesHandler(vaccineRepo domain.VaccineRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, metrics observability.Metrics) *AddDosesHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AddDosesHandler{
		vaccineRepo: vaccineRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		metrics:     metrics,
	}
}

// Handle executes the AddDosesCommand.
func (h *AddDosesHandler) Handle(ctx context.Context, cmd AddDosesCommand) (*AddDosesResult, error) {
	name, err := domain.NewVaccineName(cmd.Vaccine)
	if err != nil {
		return nil, err
	}
	if cmd.Count <= 0 {
		return nil, domain.ErrInvalidDoseCount
	}

	var result *AddDosesResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		vaccine, err := h.vaccineRepo.Upsert(txCtx, name, cmd.Count)
		if err != nil {
			return err
		}

		event := domain.NewDosesAdded(name, cmd.Count, vaccine.Doses())
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, cmd.Actor))
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Save(txCtx, msg); err != nil {
			return err
		}

		result = &AddDosesResult{Vaccine: name, TotalDoses: vaccine.Doses()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricDosesAdded, int64(cmd.Count),
		observability.T("vaccine", name))

	return result, nil
}
