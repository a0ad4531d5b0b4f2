package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
)

// SQLiteVaccineRepository implements domain.VaccineRepository over SQLite.
type SQLiteVaccineRepository struct {
	db *sql.DB
}

// NewSQLiteVaccineRepository creates a new SQLiteVaccineRepository.
func NewSQLiteVaccineRepository(db *sql.DB) *SQLiteVaccineRepository {
	return &SQLiteVaccineRepository{db: db}
}

// FindByName retrieves a lot by name.
func (r *SQLiteVaccineRepository) FindByName(ctx context.Context, name string) (*domain.Vaccine, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT name, doses, updated_at FROM vaccines WHERE name = ?`, name)
	return scanVaccine(row)
}

// ListAll returns all lots ordered by name ascending.
func (r *SQLiteVaccineRepository) ListAll(ctx context.Context) ([]*domain.Vaccine, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
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
			updatedAt string
		)
		if err := rows.Scan(&name, &doses, &updatedAt); err != nil {
			return nil, err
		}
		updated, _ := time.Parse(time.RFC3339, updatedAt)
		vaccines = append(vaccines, domain.RehydrateVaccine(name, doses, updated))
	}
	return vaccines, rows.Err()
}

// Upsert creates the lot or adds to its dose count when it already exists.
func (r *SQLiteVaccineRepository) Upsert(ctx context.Context, name string, doses int) (*domain.Vaccine, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO vaccines (name, doses, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   doses = doses + excluded.doses,
		   updated_at = excluded.updated_at`,
		name, doses, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	return r.FindByName(ctx, name)
}

// DecrementDoses atomically consumes one dose.
func (r *SQLiteVaccineRepository) DecrementDoses(ctx context.Context, name string) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	result, err := q.ExecContext(ctx,
		`UPDATE vaccines SET doses = doses - 1, updated_at = ?
		 WHERE name = ? AND doses >= 1`,
		time.Now().UTC().Format(time.RFC3339), name,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// The guard missed: distinguish an unknown lot from an empty one.
	if _, err := r.FindByName(ctx, name); err != nil {
		return err
	}
	return domain.ErrInsufficientDoses
}

func scanVaccine(row *sql.Row) (*domain.Vaccine, error) {
	var (
		name      string
		doses     int
		updatedAt string
	)
	if err := row.Scan(&name, &doses, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVaccineNotFound
		}
		return nil, err
	}
	updated, _ := time.Parse(time.RFC3339, updatedAt)
	return domain.RehydrateVaccine(name, doses, updated), nil
}
