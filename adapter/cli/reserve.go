package cli

import (
	"errors"
	"fmt"

	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	bookingCommands "github.com/felixgeelhaar/vaxsched/internal/booking/application/commands"
	bookingDomain "github.com/felixgeelhaar/vaxsched/internal/booking/domain"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	"github.com/spf13/cobra"
)

var (
	reserveDate    string
	reserveVaccine string
)

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Reserve an appointment with the earliest available caregiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errors.New("application not initialized")
		}

		ctx := cmd.Context()
		session, err := requireRole(ctx, app, identityDomain.RolePatient)
		if err != nil {
			return err
		}

		date, err := availabilityDomain.ParseDate(reserveDate)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", reserveDate)
		}

		result, err := app.ReserveHandler.Handle(ctx, bookingCommands.ReserveCommand{
			Patient: session.Username(),
			Vaccine: reserveVaccine,
			Date:    date,
		})
		if err != nil {
			switch {
			case errors.Is(err, inventoryDomain.ErrInsufficientDoses):
				fmt.Printf("Not enough %s doses available.\n", reserveVaccine)
			case errors.Is(err, availabilityDomain.ErrNoCaregiverAvailable):
				fmt.Printf("No caregiver available on %s.\n", reserveDate)
			case errors.Is(err, bookingDomain.ErrReservationConflict):
				fmt.Println("Reservation conflict, please try again.")
			}
			return fmt.Errorf("reservation failed: %w", err)
		}

		fmt.Printf("Appointment ID %d, caregiver %s on %s.\n", result.AppointmentID, result.Caregiver, result.Date)
		return nil
	},
}

func init() {
	reserveCmd.Flags().StringVarP(&reserveDate, "date", "d", "", "appointment date, YYYY-MM-DD (required)")
	reserveCmd.Flags().StringVar(&reserveVaccine, "vaccine", "", "vaccine name (required)")
	reserveCmd.MarkFlagRequired("date")
	reserveCmd.MarkFlagRequired("vaccine")
	rootCmd.AddCommand(reserveCmd)
}
