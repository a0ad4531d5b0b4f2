package cli

import (
	"errors"
	"fmt"

	bookingQueries "github.com/felixgeelhaar/vaxsched/internal/booking/application/queries"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Browse booked appointments",
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the logged-in user's appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errors.New("application not initialized")
		}

		ctx := cmd.Context()
		session, err := currentSession(ctx, app)
		if err != nil {
			return err
		}

		var (
			views       []bookingQueries.AppointmentView
			counterpart string
		)
		switch session.Role() {
		case identityDomain.RolePatient:
			counterpart = "caregiver"
			views, err = app.ListAppointmentsHandler.HandleForPatient(ctx, bookingQueries.ListAppointmentsForPatientQuery{
				Patient: session.Username(),
			})
		case identityDomain.RoleCaregiver:
			counterpart = "patient"
			views, err = app.ListAppointmentsHandler.HandleForCaregiver(ctx, bookingQueries.ListAppointmentsForCaregiverQuery{
				Caregiver: session.Username(),
			})
		default:
			return fmt.Errorf("unknown session role %q", session.Role())
		}
		if err != nil {
			return fmt.Errorf("failed to list appointments: %w", err)
		}

		if len(views) == 0 {
			fmt.Println("No appointments booked.")
			return nil
		}
		for _, v := range views {
			fmt.Printf("  %d  %s  %s  %s %s\n", v.ID, v.Date, v.Vaccine, counterpart, v.Counterpart)
		}
		return nil
	},
}

func init() {
	appointmentsCmd.AddCommand(appointmentsListCmd)
	rootCmd.AddCommand(appointmentsCmd)
}
