package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSlotRepository implements domain.SlotRepository over PostgreSQL.
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository.
func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

// Publish stores a slot.
func (r *PostgresSlotRepository) Publish(ctx context.Context, slot *domain.Slot) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`INSERT INTO availabilities (caregiver, slot_date) VALUES ($1, $2)`,
		slot.Caregiver(), slot.Date(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSlotAlreadyPublished
		}
		return err
	}
	return nil
}

// FindEarliestCaregiver returns the first open caregiver on the date,
// username ascending.
func (r *PostgresSlotRepository) FindEarliestCaregiver(ctx context.Context, date time.Time) (string, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT caregiver FROM availabilities WHERE slot_date = $1 ORDER BY caregiver ASC LIMIT 1`,
		date,
	)

	var caregiver string
	if err := row.Scan(&caregiver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNoCaregiverAvailable
		}
		return "", err
	}
	return caregiver, nil
}

// Remove deletes a slot, reporting a miss as ErrSlotNotFound.
func (r *PostgresSlotRepository) Remove(ctx context.Context, caregiver string, date time.Time) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`DELETE FROM availabilities WHERE caregiver = $1 AND slot_date = $2`,
		caregiver, date,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// ListCaregiversByDate returns all open caregivers on the date, username ascending.
func (r *PostgresSlotRepository) ListCaregiversByDate(ctx context.Context, date time.Time) ([]string, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT caregiver FROM availabilities WHERE slot_date = $1 ORDER BY caregiver ASC`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caregivers []string
	for rows.Next() {
		var caregiver string
		if err := rows.Scan(&caregiver); err != nil {
			return nil, err
		}
		caregivers = append(caregivers, caregiver)
	}
	return caregivers, rows.Err()
}
