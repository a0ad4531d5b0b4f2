package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
)

// SQLiteAppointmentRepository implements domain.AppointmentRepository over SQLite.
type SQLiteAppointmentRepository struct {
	db *sql.DB
}

// NewSQLiteAppointmentRepository creates a new SQLiteAppointmentRepository.
func NewSQLiteAppointmentRepository(db *sql.DB) *SQLiteAppointmentRepository {
	return &SQLiteAppointmentRepository{db: db}
}

// NextID mints the next ledger id inside the current transaction.
func (r *SQLiteAppointmentRepository) NextID(ctx context.Context) (int64, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM appointments`)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Insert appends an appointment to the ledger.
func (r *SQLiteAppointmentRepository) Insert(ctx context.Context, appointment *domain.Appointment) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO appointments (id, slot_date, vaccine, caregiver, patient, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		appointment.ID(),
		appointment.DateString(),
		appointment.Vaccine(),
		appointment.Caregiver(),
		appointment.Patient(),
		appointment.CreatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDuplicateAppointment
		}
		return err
	}
	return nil
}

// ListByPatient returns a patient's appointments ordered by id ascending.
func (r *SQLiteAppointmentRepository) ListByPatient(ctx context.Context, patient string) ([]*domain.Appointment, error) {
	return r.list(ctx, `patient`, patient)
}

// ListByCaregiver returns a caregiver's appointments ordered by id ascending.
func (r *SQLiteAppointmentRepository) ListByCaregiver(ctx context.Context, caregiver string) ([]*domain.Appointment, error) {
	return r.list(ctx, `caregiver`, caregiver)
}

func (r *SQLiteAppointmentRepository) list(ctx context.Context, column, value string) ([]*domain.Appointment, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT id, slot_date, vaccine, caregiver, patient, created_at
		 FROM appointments WHERE `+column+` = ? ORDER BY id ASC`,
		value,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*domain.Appointment
	for rows.Next() {
		var (
			id        int64
			slotDate  string
			vaccine   string
			caregiver string
			patient   string
			createdAt string
		)
		if err := rows.Scan(&id, &slotDate, &vaccine, &caregiver, &patient, &createdAt); err != nil {
			return nil, err
		}
		date, _ := time.Parse(domain.DateLayout, slotDate)
		created, _ := time.Parse(time.RFC3339, createdAt)
		appointments = append(appointments, domain.RehydrateAppointment(id, date, vaccine, caregiver, patient, created))
	}
	return appointments, rows.Err()
}
