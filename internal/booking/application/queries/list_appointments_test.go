package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/vaxsched/internal/booking/infrastructure/persistence"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*ListAppointmentsHandler, *bookingPersistence.SQLiteAppointmentRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLiteInMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))

	repo := bookingPersistence.NewSQLiteAppointmentRepository(db)
	return NewListAppointmentsHandler(repo), repo
}

func TestListAppointmentsHandler(t *testing.T) {
	ctx := context.Background()
	handler, repo := newHandler(t)

	date := func(value string) time.Time {
		d, err := time.Parse(domain.DateLayout, value)
		require.NoError(t, err)
		return d
	}

	require.NoError(t, repo.Insert(ctx, domain.NewAppointment(1, date("2024-01-10"), "Pfizer", "alice", "bob")))
	require.NoError(t, repo.Insert(ctx, domain.NewAppointment(2, date("2024-01-11"), "Moderna", "carol", "bob")))
	require.NoError(t, repo.Insert(ctx, domain.NewAppointment(3, date("2024-01-12"), "Pfizer", "alice", "eve")))

	t.Run("patient view shows the caregiver", func(t *testing.T) {
		views, err := handler.HandleForPatient(ctx, ListAppointmentsForPatientQuery{Patient: "bob"})
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, int64(1), views[0].ID)
		assert.Equal(t, "alice", views[0].Counterpart)
		assert.Equal(t, "Pfizer", views[0].Vaccine)
		assert.Equal(t, int64(2), views[1].ID)
		assert.Equal(t, "carol", views[1].Counterpart)
	})

	t.Run("caregiver view shows the patient", func(t *testing.T) {
		views, err := handler.HandleForCaregiver(ctx, ListAppointmentsForCaregiverQuery{Caregiver: "alice"})
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "bob", views[0].Counterpart)
		assert.Equal(t, "eve", views[1].Counterpart)
	})

	t.Run("empty ledger", func(t *testing.T) {
		views, err := handler.HandleForPatient(ctx, ListAppointmentsForPatientQuery{Patient: "ghost"})
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
