package cli

import (
	"errors"
	"fmt"

	availabilityCommands "github.com/felixgeelhaar/vaxsched/internal/availability/application/commands"
	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Manage caregiver availability",
}

var availabilityUploadDate string

var availabilityUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Publish an open slot for the logged-in caregiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errors.New("application not initialized")
		}

		ctx := cmd.Context()
		session, err := requireRole(ctx, app, identityDomain.RoleCaregiver)
		if err != nil {
			return err
		}

		date, err := availabilityDomain.ParseDate(availabilityUploadDate)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", availabilityUploadDate)
		}

		err = app.PublishSlotHandler.Handle(ctx, availabilityCommands.PublishSlotCommand{
			Caregiver: session.Username(),
			Date:      date,
		})
		if err != nil {
			if errors.Is(err, availabilityDomain.ErrSlotAlreadyPublished) {
				fmt.Printf("Availability for %s is already published.\n", availabilityUploadDate)
			}
			return fmt.Errorf("failed to upload availability: %w", err)
		}

		fmt.Printf("Availability published for %s.\n", availabilityUploadDate)
		return nil
	},
}

func init() {
	availabilityUploadCmd.Flags().StringVarP(&availabilityUploadDate, "date", "d", "", "open slot date, YYYY-MM-DD (required)")
	availabilityUploadCmd.MarkFlagRequired("date")
	availabilityCmd.AddCommand(availabilityUploadCmd)
	rootCmd.AddCommand(availabilityCmd)
}
