package cli

import (
	"errors"
	"fmt"

	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	inventoryCommands "github.com/felixgeelhaar/vaxsched/internal/inventory/application/commands"
	inventoryDomain "github.com/felixgeelhaar/vaxsched/internal/inventory/domain"
	"github.com/spf13/cobra"
)

var dosesCmd = &cobra.Command{
	Use:   "doses",
	Short: "Manage vaccine inventory",
}

var (
	dosesAddVaccine string
	dosesAddCount   int
)

var dosesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add doses to a vaccine lot",
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

		result, err := app.AddDosesHandler.Handle(ctx, inventoryCommands.AddDosesCommand{
			Actor:   session.Username(),
			Vaccine: dosesAddVaccine,
			Count:   dosesAddCount,
		})
		if err != nil {
			if errors.Is(err, inventoryDomain.ErrInvalidDoseCount) {
				fmt.Println("Dose count must be a positive number.")
			}
			return fmt.Errorf("failed to add doses: %w", err)
		}

		fmt.Printf("%s now has %d doses.\n", result.Vaccine, result.TotalDoses)
		return nil
	},
}

func init() {
	dosesAddCmd.Flags().StringVar(&dosesAddVaccine, "vaccine", "", "vaccine name (required)")
	dosesAddCmd.Flags().IntVar(&dosesAddCount, "count", 0, "number of doses to add (required)")
	dosesAddCmd.MarkFlagRequired("vaccine")
	dosesAddCmd.MarkFlagRequired("count")
	dosesCmd.AddCommand(dosesAddCmd)
	rootCmd.AddCommand(dosesCmd)
}
