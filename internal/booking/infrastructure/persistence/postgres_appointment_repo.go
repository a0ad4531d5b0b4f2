package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	sharedPersistence "github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAppointmentRepository implements domain.AppointmentRepository over PostgreSQL.
type PostgresAppointmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAppointmentRepository creates a new PostgresAppointmentRepository.
func NewPostgresAppointmentRepository(pool *pgxpool.Pool) *PostgresAppointmentRepository {
	return &PostgresAppointmentRepository{pool: pool}
}

// NextID mints the next ledger id inside the current transaction.
func (r *PostgresAppointmentRepository) NextID(ctx context.Context) (int64, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM appointments`)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Insert appends an appointment to the ledger.
func (r *PostgresAppointmentRepository) Insert(ctx context.Context, appointment *domain.Appointment) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`INSERT INTO appointments (id, slot_date, vaccine, caregiver, patient, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		appointment.ID(),
		appointment.Date(),
		appointment.Vaccine(),
		appointment.Caregiver(),
		appointment.Patient(),
		appointment.CreatedAt().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateAppointment
		}
		return err
	}
	return nil
}

// ListByPatient returns a patient's appointments ordered by id ascending.
func (r *PostgresAppointmentRepository) ListByPatient(ctx context.Context, patient string) ([]*domain.Appointment, error) {
	return r.list(ctx, `patient`, patient)
}

// ListByCaregiver returns a caregiver's appointments ordered by id ascending.
func (r *PostgresAppointmentRepository) ListByCaregiver(ctx context.Context, caregiver string) ([]*domain.Appointment, error) {
	return r.list(ctx, `caregiver`, caregiver)
}

func (r *PostgresAppointmentRepository) list(ctx context.Context, column, value string) ([]*domain.Appointment, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, slot_date, vaccine, caregiver, patient, created_at
		 FROM appointments WHERE `+column+` = $1 ORDER BY id ASC`,
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
			slotDate  time.Time
			vaccine   string
			caregiver string
			patient   string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &slotDate, &vaccine, &caregiver, &patient, &createdAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, domain.RehydrateAppointment(id, slotDate, vaccine, caregiver, patient, createdAt))
	}
	return appointments, rows.Err()
}
