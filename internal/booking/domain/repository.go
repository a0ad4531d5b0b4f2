package domain

import "context"

// AppointmentRepository persists the booking ledger.
type AppointmentRepository interface {
	// NextID mints the next ledger id, MAX(id)+1 over the current table.
	// Must run inside the reservation transaction; a lost race surfaces on
	// Insert as ErrDuplicateAppointment.
	NextID(ctx context.Context) (int64, error)

	// Insert appends an appointment to the ledger. Returns
	// ErrDuplicateAppointment when the id is already taken.
	Insert(ctx context.Context, appointment *Appointment) error

	// ListByPatient returns a patient's appointments ordered by id ascending.
	ListByPatient(ctx context.Context, patient string) ([]*Appointment, error)

	// ListByCaregiver returns a caregiver's appointments ordered by id ascending.
	ListByCaregiver(ctx context.Context, caregiver string) ([]*Appointment, error)
}
