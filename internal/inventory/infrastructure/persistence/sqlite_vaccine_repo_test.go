package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
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

func TestSQLiteVaccineRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteVaccineRepository(newTestDB(t))

	v, err := repo.Upsert(ctx, "Pfizer", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Doses())

	// Second upsert accumulates.
	v, err = repo.Upsert(ctx, "Pfizer", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, v.Doses())
}

func TestSQLiteVaccineRepository_FindByName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteVaccineRepository(newTestDB(t))

	_, err := repo.FindByName(ctx, "Pfizer")
	assert.ErrorIs(t, err, domain.ErrVaccineNotFound)

	_, err = repo.Upsert(ctx, "Pfizer", 2)
	require.NoError(t, err)

	v, err := repo.FindByName(ctx, "Pfizer")
	require.NoError(t, err)
	assert.Equal(t, "Pfizer", v.Name())
	assert.Equal(t, 2, v.Doses())
}

func TestSQLiteVaccineRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteVaccineRepository(newTestDB(t))

	vaccines, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, vaccines)

	_, err = repo.Upsert(ctx, "Moderna", 1)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "AstraZeneca", 2)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "Pfizer", 3)
	require.NoError(t, err)

	vaccines, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, vaccines, 3)
	assert.Equal(t, "AstraZeneca", vaccines[0].Name())
	assert.Equal(t, "Moderna", vaccines[1].Name())
	assert.Equal(t, "Pfizer", vaccines[2].Name())
}

func TestSQLiteVaccineRepository_DecrementDoses(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes one dose", func(t *testing.T) {
		repo := NewSQLiteVaccineRepository(newTestDB(t))
		_, err := repo.Upsert(ctx, "Pfizer", 2)
		require.NoError(t, err)

		require.NoError(t, repo.DecrementDoses(ctx, "Pfizer"))
		v, err := repo.FindByName(ctx, "Pfizer")
		require.NoError(t, err)
		assert.Equal(t, 1, v.Doses())
	})

	t.Run("empty lot maps to ErrInsufficientDoses", func(t *testing.T) {
		repo := NewSQLiteVaccineRepository(newTestDB(t))
		_, err := repo.Upsert(ctx, "Pfizer", 1)
		require.NoError(t, err)

		require.NoError(t, repo.DecrementDoses(ctx, "Pfizer"))
		err = repo.DecrementDoses(ctx, "Pfizer")
		assert.ErrorIs(t, err, domain.ErrInsufficientDoses)

		// Count never goes negative.
		v, err := repo.FindByName(ctx, "Pfizer")
		require.NoError(t, err)
		assert.Equal(t, 0, v.Doses())
	})

	t.Run("unknown lot maps to ErrVaccineNotFound", func(t *testing.T) {
		repo := NewSQLiteVaccineRepository(newTestDB(t))
		err := repo.DecrementDoses(ctx, "Nope")
		assert.ErrorIs(t, err, domain.ErrVaccineNotFound)
	})
}
