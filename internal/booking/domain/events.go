package domain

import (
	"strconv"

	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

const (
	AggregateType = "Appointment"

	RoutingKeyAppointmentBooked = "booking.appointment.booked"
)

// AppointmentBooked is emitted when a reservation commits.
type AppointmentBooked struct {
	sharedDomain.BaseEvent
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	Vaccine       string `json:"vaccine"`
	Caregiver     string `json:"caregiver"`
	Patient       string `json:"patient"`
}

// NewAppointmentBooked creates an AppointmentBooked event.
func NewAppointmentBooked(id int64, date, vaccine, caregiver, patient string) *AppointmentBooked {
	return &AppointmentBooked{
		BaseEvent:     sharedDomain.NewBaseEvent(strconv.FormatInt(id, 10), AggregateType, RoutingKeyAppointmentBooked),
		AppointmentID: id,
		Date:          date,
		Vaccine:       vaccine,
		Caregiver:     caregiver,
		Patient:       patient,
	}
}
