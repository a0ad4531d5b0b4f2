package domain

import (
	"errors"
	"strconv"
	"time"

	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrDuplicateAppointment = errors.New("appointment id already taken")
	ErrReservationConflict  = errors.New("reservation conflict, please try again")
)

// DateLayout is the calendar-date wire format used throughout.
const DateLayout = "2006-01-02"

// Appointment is one row of the booking ledger: a patient matched with a
// caregiver for a vaccine dose on a date. IDs are dense positive integers
// minted inside the reservation transaction.
type Appointment struct {
	sharedDomain.BaseAggregateRoot
	id        int64
	date      time.Time
	vaccine   string
	caregiver string
	patient   string
}

// NewAppointment books a new appointment.
func NewAppointment(id int64, date time.Time, vaccine, caregiver, patient string) *Appointment {
	a := &Appointment{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		id:                id,
		date:              date.UTC().Truncate(24 * time.Hour),
		vaccine:           vaccine,
		caregiver:         caregiver,
		patient:           patient,
	}

	a.AddDomainEvent(NewAppointmentBooked(id, a.DateString(), vaccine, caregiver, patient))

	return a
}

// RehydrateAppointment recreates an appointment from persisted state.
func RehydrateAppointment(id int64, date time.Time, vaccine, caregiver, patient string, createdAt time.Time) *Appointment {
	return &Appointment{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(createdAt, createdAt),
		id:                id,
		date:              date,
		vaccine:           vaccine,
		caregiver:         caregiver,
		patient:           patient,
	}
}

// Getters
func (a *Appointment) ID() int64         { return a.id }
func (a *Appointment) Date() time.Time   { return a.date }
func (a *Appointment) Vaccine() string   { return a.vaccine }
func (a *Appointment) Caregiver() string { return a.caregiver }
func (a *Appointment) Patient() string   { return a.patient }

// DateString returns the date in YYYY-MM-DD form.
func (a *Appointment) DateString() string {
	return a.date.Format(DateLayout)
}

// Key returns the ledger id as an aggregate key.
func (a *Appointment) Key() string {
	return strconv.FormatInt(a.id, 10)
}
