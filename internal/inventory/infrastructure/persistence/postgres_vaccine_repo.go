package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVaccineRepository implements domain.VaccineRepository over PostgreSQL.
type PostgresVaccineRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVaccineRepository creates a new PostgresVaccineRepository.
func NewPostgresVaccineRepository(pool *pgxpool.Pool) *PostgresVaccineRepository {
	return &PostgresVaccineRepository{pool: pool}
}

// FindByName retrieves a lot by name.
func (r *PostgresVaccineRepository) FindByName(ctx context.Context, name string) (*domain.Vaccine, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT name, doses, updated_at FROM vaccines WHERE name = $1`, name)

	var (
		lotName   string
		doses     int
		updatedAt time.Time
	)
	if err := row.Scan(&lotName, &doses, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVaccineNotFound
		}
		return nil, err
	}
	return domain.RehydrateVaccine(lotName, doses, updatedAt), nil
}

// ListAll returns all lots ordered by name ascending.
func (r *PostgresVaccineRepository) ListAll(ctx context.Context) ([]*domain.Vaccine, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT name, doses, updated_at FROM vaccines ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vaccines []*domain.Vaccine
	for rows.Next() {
		var (
			name      string
			doses     int
			updatedAt time.Time
		)
		if err := rows.Scan(&name, &doses, &updatedAt); err != nil {
			return nil, err
		}
		vaccines = append(vaccines, domain.RehydrateVaccine(name, doses, updatedAt))
	}
	return vaccines, rows.Err()
}

// Upsert creates the lot or adds to its dose count when it already exists.
func (r *PostgresVaccineRepository) Upsert(ctx context.Context, name string, doses int) (*domain.Vaccine, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`INSERT INTO vaccines (name, doses, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET
		   doses = vaccines.doses + EXCLUDED.doses,
		   updated_at = now()`,
		name, doses,
	)
	if err != nil {
		return nil, err
	}
	return r.FindByName(ctx, name)
}

// DecrementDoses atomically consumes one dose.
func (r *PostgresVaccineRepository) DecrementDoses(ctx context.Context, name string) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE vaccines SET doses = doses - 1, updated_at = now()
		 WHERE name = $1 AND doses >= 1`,
		name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.FindByName(ctx, name); err != nil {
		return err
	}
	return domain.ErrInsufficientDoses
}
