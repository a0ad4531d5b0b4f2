package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	sharedApplication "github.com/felixgeelhaar/vaxsched/internal/shared/application"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
)

// ReserveCommand books the earliest available caregiver on a date for a
// vaccine dose.
type ReserveCommand struct {
	Patient string
	Vaccine string
	Date    time.Time
}

// ReserveResult reports the committed booking.
type ReserveResult struct {
	AppointmentID int64
	Caregiver     string
	Date          string
	Vaccine       string
}

// ReserveHandler runs the reservation engine: dose check, caregiver
// selection, id minting, ledger insert, slot consumption, and dose
// decrement, all in one serializable unit of work. A conflicting
// concurrent reservation triggers exactly one transparent retry; the
// retry re-runs the whole sequence, so it naturally falls over to the
// next earliest caregiver when the first slot was taken.
type ReserveHandler struct {
	appointmentRepo domain.AppointmentRepository
	vaccineRepo     inventoryDomain.VaccineRepository
	slotRepo        availabilityDomain.SlotRepository
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
	logger          *slog.Logger
	metrics         observability.Metrics
}

// NewReserveHandler creates a new ReserveHandler.
func NewReserveHandler(
	appointmentRepo domain.AppointmentRepository,
	vaccineRepo inventoryDomain.VaccineRepository,
	slotRepo availabilityDomain.SlotRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ReserveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ReserveHandler{
		appointmentRepo: appointmentRepo,
		vaccineRepo:     vaccineRepo,
		slotRepo:        slotRepo,
		outboxRepo:      outboxRepo,
		uow:             uow,
		logger:          logger,
		metrics:         metrics,
	}
}

// Handle executes the ReserveCommand.
func (h *ReserveHandler) Handle(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error) {
	vaccine, err := inventoryDomain.NewVaccineName(cmd.Vaccine)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := h.attempt(ctx, cmd.Patient, vaccine, cmd.Date)
	if err != nil && isConflict(err) {
		h.metrics.Counter(observability.MetricReservationsRetried, 1)
		h.logger.Info("reservation conflict, retrying once",
			"patient", cmd.Patient,
			"vaccine", vaccine,
			"date", cmd.Date.Format(domain.DateLayout),
			"error", err,
		)
		result, err = h.attempt(ctx, cmd.Patient, vaccine, cmd.Date)
	}
	h.metrics.Timing(observability.MetricReservationDuration, time.Since(start))

	if err != nil {
		h.metrics.Counter(observability.MetricReservationsRejected, 1)
		if isConflict(err) {
			return nil, domain.ErrReservationConflict
		}
		return nil, err
	}

	h.metrics.Counter(observability.MetricReservationsBooked, 1)
	h.logger.Info("appointment booked",
		"appointment_id", result.AppointmentID,
		"patient", cmd.Patient,
		"caregiver", result.Caregiver,
		"vaccine", result.Vaccine,
		"date", result.Date,
	)

	return result, nil
}

// attempt runs the whole reservation sequence in one transaction.
func (h *ReserveHandler) attempt(ctx context.Context, patient, vaccine string, date time.Time) (*ReserveResult, error) {
	var result *ReserveResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		lot, err := h.vaccineRepo.FindByName(txCtx, vaccine)
		if err != nil {
			return err
		}
		if lot.Doses() < 1 {
			return inventoryDomain.ErrInsufficientDoses
		}

		caregiver, err := h.slotRepo.FindEarliestCaregiver(txCtx, date)
		if err != nil {
			return err
		}

		id, err := h.appointmentRepo.NextID(txCtx)
		if err != nil {
			return err
		}

		appointment := domain.NewAppointment(id, date, vaccine, caregiver, patient)
		if err := h.appointmentRepo.Insert(txCtx, appointment); err != nil {
			return err
		}

		if err := h.slotRepo.Remove(txCtx, caregiver, date); err != nil {
			return err
		}

		if err := h.vaccineRepo.DecrementDoses(txCtx, vaccine); err != nil {
			return err
		}

		events := appointment.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, patient))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}

		result = &ReserveResult{
			AppointmentID: appointment.ID(),
			Caregiver:     caregiver,
			Date:          appointment.DateString(),
			Vaccine:       vaccine,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// isConflict classifies failures caused by a concurrent reservation: a lost
// id-minting race, a slot consumed under us, or a serialization failure
// surfaced by the database.
func isConflict(err error) bool {
	return errors.Is(err, domain.ErrDuplicateAppointment) ||
		errors.Is(err, availabilityDomain.ErrSlotNotFound) ||
		persistence.IsSerializationFailure(err)
}
