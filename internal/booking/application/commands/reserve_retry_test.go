package commands

import (
	"context"
	"testing"
	"time"

	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppointmentRepo) Insert(ctx context.Context, appointment *domain.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *mockAppointmentRepo) ListByPatient(ctx context.Context, patient string) ([]*domain.Appointment, error) {
	args := m.Called(ctx, patient)
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) ListByCaregiver(ctx context.Context, caregiver string) ([]*domain.Appointment, error) {
	args := m.Called(ctx, caregiver)
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

type mockVaccineRepo struct{ mock.Mock }

func (m *mockVaccineRepo) FindByName(ctx context.Context, name string) (*inventoryDomain.Vaccine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryDomain.Vaccine), args.Error(1)
}

func (m *mockVaccineRepo) ListAll(ctx context.Context) ([]*inventoryDomain.Vaccine, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*inventoryDomain.Vaccine), args.Error(1)
}

func (m *mockVaccineRepo) Upsert(ctx context.Context, name string, doses int) (*inventoryDomain.Vaccine, error) {
	args := m.Called(ctx, name, doses)
	return args.Get(0).(*inventoryDomain.Vaccine), args.Error(1)
}

func (m *mockVaccineRepo) DecrementDoses(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type mockSlotRepo struct{ mock.Mock }

func (m *mockSlotRepo) Publish(ctx context.Context, slot *availabilityDomain.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *mockSlotRepo) FindEarliestCaregiver(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

func (m *mockSlotRepo) Remove(ctx context.Context, caregiver string, date time.Time) error {
	args := m.Called(ctx, caregiver, date)
	return args.Error(0)
}

func (m *mockSlotRepo) ListCaregiversByDate(ctx context.Context, date time.Time) ([]string, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]string), args.Error(1)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// passthroughUow runs transactions as plain function calls.
type passthroughUow struct{}

func (passthroughUow) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (passthroughUow) Commit(ctx context.Context) error                   { return nil }
func (passthroughUow) Rollback(ctx context.Context) error                 { return nil }

func TestReserveHandler_RetryOnConflict(t *testing.T) {
	ctx := context.Background()
	date, err := availabilityDomain.ParseDate("2024-01-10")
	require.NoError(t, err)

	lot := func() *inventoryDomain.Vaccine {
		return inventoryDomain.RehydrateVaccine("Pfizer", 2, time.Now().UTC())
	}

	t.Run("retry falls over to the next caregiver", func(t *testing.T) {
		appointmentRepo := &mockAppointmentRepo{}
		vaccineRepo := &mockVaccineRepo{}
		slotRepo := &mockSlotRepo{}
		outboxRepo := &mockOutboxRepo{}
		metrics := observability.NewInMemoryMetrics()

		vaccineRepo.On("FindByName", mock.Anything, "Pfizer").Return(lot(), nil).Twice()
		appointmentRepo.On("NextID", mock.Anything).Return(int64(1), nil).Twice()
		appointmentRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Twice()

		// First attempt selects alice but her slot vanishes underneath;
		// the second attempt re-selects and lands on bob.
		slotRepo.On("FindEarliestCaregiver", mock.Anything, mock.Anything).Return("alice", nil).Once()
		slotRepo.On("Remove", mock.Anything, "alice", mock.Anything).Return(availabilityDomain.ErrSlotNotFound).Once()
		slotRepo.On("FindEarliestCaregiver", mock.Anything, mock.Anything).Return("bob", nil).Once()
		slotRepo.On("Remove", mock.Anything, "bob", mock.Anything).Return(nil).Once()

		vaccineRepo.On("DecrementDoses", mock.Anything, "Pfizer").Return(nil).Once()
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil).Once()

		handler := NewReserveHandler(appointmentRepo, vaccineRepo, slotRepo, outboxRepo, passthroughUow{}, nil, metrics)

		result, err := handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
		require.NoError(t, err)
		assert.Equal(t, "bob", result.Caregiver)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricReservationsRetried))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricReservationsBooked))

		appointmentRepo.AssertExpectations(t)
		slotRepo.AssertExpectations(t)
		vaccineRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("second conflict surfaces as reservation conflict", func(t *testing.T) {
		appointmentRepo := &mockAppointmentRepo{}
		vaccineRepo := &mockVaccineRepo{}
		slotRepo := &mockSlotRepo{}
		outboxRepo := &mockOutboxRepo{}
		metrics := observability.NewInMemoryMetrics()

		vaccineRepo.On("FindByName", mock.Anything, "Pfizer").Return(lot(), nil).Twice()
		slotRepo.On("FindEarliestCaregiver", mock.Anything, mock.Anything).Return("alice", nil).Twice()
		appointmentRepo.On("NextID", mock.Anything).Return(int64(1), nil).Twice()

		// Both attempts lose the id-minting race.
		appointmentRepo.On("Insert", mock.Anything, mock.Anything).Return(domain.ErrDuplicateAppointment).Twice()

		handler := NewReserveHandler(appointmentRepo, vaccineRepo, slotRepo, outboxRepo, passthroughUow{}, nil, metrics)

		_, err := handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
		assert.ErrorIs(t, err, domain.ErrReservationConflict)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricReservationsRetried))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricReservationsRejected))

		appointmentRepo.AssertExpectations(t)
	})

	t.Run("non-conflict failure is not retried", func(t *testing.T) {
		appointmentRepo := &mockAppointmentRepo{}
		vaccineRepo := &mockVaccineRepo{}
		slotRepo := &mockSlotRepo{}
		outboxRepo := &mockOutboxRepo{}
		metrics := observability.NewInMemoryMetrics()

		vaccineRepo.On("FindByName", mock.Anything, "Pfizer").
			Return(nil, inventoryDomain.ErrVaccineNotFound).Once()

		handler := NewReserveHandler(appointmentRepo, vaccineRepo, slotRepo, outboxRepo, passthroughUow{}, nil, metrics)

		_, err := handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
		assert.ErrorIs(t, err, inventoryDomain.ErrVaccineNotFound)
		assert.Equal(t, int64(0), metrics.GetCounter(observability.MetricReservationsRetried))

		vaccineRepo.AssertExpectations(t)
	})
}
