package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
)

// SQLiteSlotRepository implements domain.SlotRepository over SQLite.
type SQLiteSlotRepository struct {
	db *sql.DB
}

// NewSQLiteSlotRepository creates a new SQLiteSlotRepository.
func NewSQLiteSlotRepository(db *sql.DB) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{db: db}
}

// Publish stores a slot.
func (r *SQLiteSlotRepository) Publish(ctx context.Context, slot *domain.Slot) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO availabilities (caregiver, slot_date) VALUES (?, ?)`,
		slot.Caregiver(), slot.DateString(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrSlotAlreadyPublished
		}
		return err
	}
	return nil
}

// FindEarliestCaregiver returns the first open caregiver on the date,
// username ascending.
func (r *SQLiteSlotRepository) FindEarliestCaregiver(ctx context.Context, date time.Time) (string, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT caregiver FROM availabilities WHERE slot_date = ? ORDER BY caregiver ASC LIMIT 1`,
		date.Format(domain.DateLayout),
	)

	var caregiver string
	if err := row.Scan(&caregiver); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNoCaregiverAvailable
		}
		return "", err
	}
	return caregiver, nil
}

// Remove deletes a slot, reporting a miss as ErrSlotNotFound.
func (r *SQLiteSlotRepository) Remove(ctx context.Context, caregiver string, date time.Time) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	result, err := q.ExecContext(ctx,
		`DELETE FROM availabilities WHERE caregiver = ? AND slot_date = ?`,
		caregiver, date.Format(domain.DateLayout),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// ListCaregiversByDate returns all open caregivers on the date, username ascending.
func (r *SQLiteSlotRepository) ListCaregiversByDate(ctx context.Context, date time.Time) ([]string, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT caregiver FROM availabilities WHERE slot_date = ? ORDER BY caregiver ASC`,
		date.Format(domain.DateLayout),
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
