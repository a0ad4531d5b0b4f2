package queries

import (
	"context"

	"github.com/felixgeelhaar/vaxsched/internal/booking/domain"
)

// AppointmentView is a read model of one ledger row. Counterpart holds the
// other party: the caregiver when listing for a patient, the patient when
// listing for a caregiver.
type AppointmentView struct {
	ID          int64
	Date        string
	Vaccine     string
	Counterpart string
}

// ListAppointmentsForPatientQuery lists a patient's bookings.
type ListAppointmentsForPatientQuery struct {
	Patient string
}

// ListAppointmentsForCaregiverQuery lists a caregiver's bookings.
type ListAppointmentsForCaregiverQuery struct {
	Caregiver string
}

// ListAppointmentsHandler handles both appointment list queries.
type ListAppointmentsHandler struct {
	appointmentRepo domain.AppointmentRepository
}

// NewListAppointmentsHandler creates a new ListAppointmentsHandler.
func NewListAppointmentsHandler(appointmentRepo domain.AppointmentRepository) *ListAppointmentsHandler {
	return &ListAppointmentsHandler{appointmentRepo: appointmentRepo}
}

// HandleForPatient returns the patient's appointments, id ascending.
func (h *ListAppointmentsHandler) HandleForPatient(ctx context.Context, query ListAppointmentsForPatientQuery) ([]AppointmentView, error) {
	appointments, err := h.appointmentRepo.ListByPatient(ctx, query.Patient)
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, AppointmentView{
			ID:          a.ID(),
			Date:        a.DateString(),
			Vaccine:     a.Vaccine(),
			Counterpart: a.Caregiver(),
		})
	}
	return views, nil
}

// HandleForCaregiver returns the caregiver's appointments, id ascending.
func (h *ListAppointmentsHandler) HandleForCaregiver(ctx context.Context, query ListAppointmentsForCaregiverQuery) ([]AppointmentView, error) {
	appointments, err := h.appointmentRepo.ListByCaregiver(ctx, query.Caregiver)
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, AppointmentView{
			ID:          a.ID(),
			Date:        a.DateString(),
			Vaccine:     a.Vaccine(),
			Counterpart: a.Patient(),
		})
	}
	return views, nil
}
