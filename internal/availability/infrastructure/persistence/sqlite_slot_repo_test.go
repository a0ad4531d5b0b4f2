package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLiteInMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))
	return db
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := domain.ParseDate(value)
	require.NoError(t, err)
	return date
}

func TestSQLiteSlotRepository_Publish(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSlotRepository(newTestDB(t))
	date := day(t, "2024-01-10")

	require.NoError(t, repo.Publish(ctx, domain.NewSlot("alice", date)))

	// Re-upload of the same pair is reported, not silently ignored.
	err := repo.Publish(ctx, domain.NewSlot("alice", date))
	assert.ErrorIs(t, err, domain.ErrSlotAlreadyPublished)

	// Same caregiver, different date is fine.
	require.NoError(t, repo.Publish(ctx, domain.NewSlot("alice", day(t, "2024-01-11"))))
}

func TestSQLiteSlotRepository_FindEarliestCaregiver(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSlotRepository(newTestDB(t))
	date := day(t, "2024-01-10")

	t.Run("no slots", func(t *testing.T) {
		_, err := repo.FindEarliestCaregiver(ctx, date)
		assert.ErrorIs(t, err, domain.ErrNoCaregiverAvailable)
	})

	t.Run("lexicographically first wins", func(t *testing.T) {
		require.NoError(t, repo.Publish(ctx, domain.NewSlot("carol", date)))
		require.NoError(t, repo.Publish(ctx, domain.NewSlot("alice", date)))
		require.NoError(t, repo.Publish(ctx, domain.NewSlot("bob", date)))

		caregiver, err := repo.FindEarliestCaregiver(ctx, date)
		require.NoError(t, err)
		assert.Equal(t, "alice", caregiver)
	})

	t.Run("other dates do not leak in", func(t *testing.T) {
		other := day(t, "2024-02-01")
		_, err := repo.FindEarliestCaregiver(ctx, other)
		assert.ErrorIs(t, err, domain.ErrNoCaregiverAvailable)
	})
}

func TestSQLiteSlotRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSlotRepository(newTestDB(t))
	date := day(t, "2024-01-10")

	require.NoError(t, repo.Publish(ctx, domain.NewSlot("alice", date)))
	require.NoError(t, repo.Remove(ctx, "alice", date))

	// Removing an absent pair is a detectable miss.
	err := repo.Remove(ctx, "alice", date)
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestSQLiteSlotRepository_ListCaregiversByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSlotRepository(newTestDB(t))
	date := day(t, "2024-01-10")

	caregivers, err := repo.ListCaregiversByDate(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, caregivers)

	require.NoError(t, repo.Publish(ctx, domain.NewSlot("carol", date)))
	require.NoError(t, repo.Publish(ctx, domain.NewSlot("alice", date)))

	caregivers, err = repo.ListCaregiversByDate(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, caregivers)
}
