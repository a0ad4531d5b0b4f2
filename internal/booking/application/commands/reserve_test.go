package commands

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	availabilityPersistence "github.com/felixgeelhaar/vaxsched/internal/availability/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/vaxsched/internal/booking/infrastructure/persistence"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	inventoryPersistence "github.com/felixgeelhaar/vaxsched/internal/inventory/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reserveFixture struct {
	db              *sql.DB
	handler         *ReserveHandler
	appointmentRepo *bookingPersistence.SQLiteAppointmentRepository
	vaccineRepo     *inventoryPersistence.SQLiteVaccineRepository
	slotRepo        *availabilityPersistence.SQLiteSlotRepository
	outboxRepo      *outbox.SQLiteRepository
	metrics         *observability.InMemoryMetrics
}

func newReserveFixture(t *testing.T) *reserveFixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLiteInMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))

	f := &reserveFixture{
		db:              db,
		appointmentRepo: bookingPersistence.NewSQLiteAppointmentRepository(db),
		vaccineRepo:     inventoryPersistence.NewSQLiteVaccineRepository(db),
		slotRepo:        availabilityPersistence.NewSQLiteSlotRepository(db),
		outboxRepo:      outbox.NewSQLiteRepository(db),
		metrics:         observability.NewInMemoryMetrics(),
	}
	f.handler = NewReserveHandler(
		f.appointmentRepo,
		f.vaccineRepo,
		f.slotRepo,
		f.outboxRepo,
		sharedPersistence.NewSQLiteUnitOfWork(db),
		nil,
		f.metrics,
	)
	return f
}

func (f *reserveFixture) seedVaccine(t *testing.T, name string, doses int) {
	t.Helper()
	_, err := f.vaccineRepo.Upsert(context.Background(), name, doses)
	require.NoError(t, err)
}

func (f *reserveFixture) seedSlot(t *testing.T, caregiver string, date time.Time) {
	t.Helper()
	require.NoError(t, f.slotRepo.Publish(context.Background(), availabilityDomain.NewSlot(caregiver, date)))
}

func (f *reserveFixture) snapshot(t *testing.T) (doses map[string]int, slots int, appointments int) {
	t.Helper()
	ctx := context.Background()

	doses = make(map[string]int)
	vaccines, err := f.vaccineRepo.ListAll(ctx)
	require.NoError(t, err)
	for _, v := range vaccines {
		doses[v.Name()] = v.Doses()
	}

	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM availabilities`).Scan(&slots))
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM appointments`).Scan(&appointments))
	return doses, slots, appointments
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := availabilityDomain.ParseDate(value)
	require.NoError(t, err)
	return date
}

func TestReserveHandler_Success(t *testing.T) {
	ctx := context.Background()
	f := newReserveFixture(t)
	date := day(t, "2024-01-10")

	f.seedVaccine(t, "Pfizer", 1)
	f.seedSlot(t, "alice", date)

	result, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "Pfizer", Date: date})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.AppointmentID)
	assert.Equal(t, "alice", result.Caregiver)
	assert.Equal(t, "2024-01-10", result.Date)

	// Doses consumed, slot gone, ledger row present.
	vaccine, err := f.vaccineRepo.FindByName(ctx, "Pfizer")
	require.NoError(t, err)
	assert.Equal(t, 0, vaccine.Doses())

	caregivers, err := f.slotRepo.ListCaregiversByDate(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, caregivers)

	appointments, err := f.appointmentRepo.ListByPatient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Pfizer", appointments[0].Vaccine())

	// Booking event committed with the reservation.
	msgs, err := f.outboxRepo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoutingKeyAppointmentBooked, msgs[0].RoutingKey)
	assert.Equal(t, "1", msgs[0].AggregateKey)

	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricReservationsBooked))
}

func TestReserveHandler_Rejections(t *testing.T) {
	ctx := context.Background()
	date := "2024-01-10"

	t.Run("insufficient doses", func(t *testing.T) {
		f := newReserveFixture(t)
		f.seedVaccine(t, "Pfizer", 1)
		f.seedSlot(t, "alice", day(t, date))
		f.seedSlot(t, "carol", day(t, date))

		_, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "Pfizer", Date: day(t, date)})
		require.NoError(t, err)

		_, err = f.handler.Handle(ctx, ReserveCommand{Patient: "eve", Vaccine: "Pfizer", Date: day(t, date)})
		assert.ErrorIs(t, err, inventoryDomain.ErrInsufficientDoses)
	})

	t.Run("no caregiver available", func(t *testing.T) {
		f := newReserveFixture(t)
		f.seedVaccine(t, "Pfizer", 5)

		_, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "Pfizer", Date: day(t, date)})
		assert.ErrorIs(t, err, availabilityDomain.ErrNoCaregiverAvailable)
	})

	t.Run("unknown vaccine", func(t *testing.T) {
		f := newReserveFixture(t)
		f.seedSlot(t, "alice", day(t, date))

		_, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "Nope", Date: day(t, date)})
		assert.ErrorIs(t, err, inventoryDomain.ErrVaccineNotFound)
	})

	t.Run("empty vaccine name", func(t *testing.T) {
		f := newReserveFixture(t)
		_, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "  ", Date: day(t, date)})
		assert.ErrorIs(t, err, inventoryDomain.ErrEmptyVaccineName)
	})

	t.Run("rejected call leaves state untouched", func(t *testing.T) {
		f := newReserveFixture(t)
		f.seedVaccine(t, "Pfizer", 1)
		f.seedSlot(t, "alice", day(t, date))

		// Drain the lot, then snapshot.
		_, err := f.handler.Handle(ctx, ReserveCommand{Patient: "bob", Vaccine: "Pfizer", Date: day(t, date)})
		require.NoError(t, err)
		f.seedSlot(t, "carol", day(t, date))
		dosesBefore, slotsBefore, apptsBefore := f.snapshot(t)

		_, err = f.handler.Handle(ctx, ReserveCommand{Patient: "eve", Vaccine: "Pfizer", Date: day(t, date)})
		assert.ErrorIs(t, err, inventoryDomain.ErrInsufficientDoses)

		dosesAfter, slotsAfter, apptsAfter := f.snapshot(t)
		assert.Equal(t, dosesBefore, dosesAfter)
		assert.Equal(t, slotsBefore, slotsAfter)
		assert.Equal(t, apptsBefore, apptsAfter)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricReservationsRejected))
	})
}

func TestReserveHandler_PicksEarliestCaregiver(t *testing.T) {
	ctx := context.Background()
	f := newReserveFixture(t)
	date := day(t, "2024-01-10")

	f.seedVaccine(t, "Pfizer", 3)
	f.seedSlot(t, "carol", date)
	f.seedSlot(t, "alice", date)
	f.seedSlot(t, "bob", date)

	result, err := f.handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Caregiver)

	result, err = f.handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
	require.NoError(t, err)
	assert.Equal(t, "bob", result.Caregiver)

	result, err = f.handler.Handle(ctx, ReserveCommand{Patient: "pat", Vaccine: "Pfizer", Date: date})
	require.NoError(t, err)
	assert.Equal(t, "carol", result.Caregiver)
}

func TestReserveHandler_ConcurrentReserves(t *testing.T) {
	ctx := context.Background()

	t.Run("K doses among N patients", func(t *testing.T) {
		const (
			patients = 8
			doses    = 3
		)
		f := newReserveFixture(t)
		date := day(t, "2024-01-10")

		f.seedVaccine(t, "Pfizer", doses)
		for _, caregiver := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"} {
			f.seedSlot(t, caregiver, date)
		}

		var wg sync.WaitGroup
		errs := make([]error, patients)
		for i := 0; i < patients; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.handler.Handle(ctx, ReserveCommand{
					Patient: "p" + string(rune('0'+i)),
					Vaccine: "Pfizer",
					Date:    date,
				})
			}(i)
		}
		wg.Wait()

		var booked, insufficient int
		for _, err := range errs {
			switch {
			case err == nil:
				booked++
			case assert.ErrorIs(t, err, inventoryDomain.ErrInsufficientDoses):
				insufficient++
			}
		}
		assert.Equal(t, doses, booked)
		assert.Equal(t, patients-doses, insufficient)

		// Total decrement equals successful bookings; ids are unique and dense.
		vaccine, err := f.vaccineRepo.FindByName(ctx, "Pfizer")
		require.NoError(t, err)
		assert.Equal(t, 0, vaccine.Doses())

		seen := make(map[int64]bool)
		var total int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM appointments`).Scan(&total))
		assert.Equal(t, doses, total)
		rows, err := f.db.Query(`SELECT id FROM appointments`)
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var id int64
			require.NoError(t, rows.Scan(&id))
			assert.False(t, seen[id])
			seen[id] = true
		}
		require.NoError(t, rows.Err())
	})

	t.Run("one slot, two patients", func(t *testing.T) {
		f := newReserveFixture(t)
		date := day(t, "2024-01-10")

		f.seedVaccine(t, "Pfizer", 2)
		f.seedSlot(t, "alice", date)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.handler.Handle(ctx, ReserveCommand{
					Patient: "p" + string(rune('0'+i)),
					Vaccine: "Pfizer",
					Date:    date,
				})
			}(i)
		}
		wg.Wait()

		var booked int
		for _, err := range errs {
			if err == nil {
				booked++
			} else {
				assert.ErrorIs(t, err, availabilityDomain.ErrNoCaregiverAvailable)
			}
		}
		assert.Equal(t, 1, booked)

		// The slot produced exactly one appointment.
		var total int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM appointments`).Scan(&total))
		assert.Equal(t, 1, total)
	})
}
