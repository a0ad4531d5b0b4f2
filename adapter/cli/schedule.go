package cli

import (
	"errors"
	"fmt"
	"strings"

	availabilityQueries "github.com/felixgeelhaar/vaxsched/internal/availability/application/queries"
	availabilityDomain "github.com/felixgeelhaar/vaxsched/internal/availability/domain"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Browse the appointment schedule",
}

var scheduleSearchDate string

var scheduleSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "List open caregivers and vaccine stock for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errors.New("application not initialized")
		}

		ctx := cmd.Context()
		if _, err := currentSession(ctx, app); err != nil {
			return err
		}

		date, err := availabilityDomain.ParseDate(scheduleSearchDate)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", scheduleSearchDate)
		}

		view, err := app.SearchScheduleHandler.Handle(ctx, availabilityQueries.SearchScheduleQuery{Date: date})
		if err != nil {
			return fmt.Errorf("schedule search failed: %w", err)
		}

		fmt.Printf("Schedule for %s\n", view.Date)
		if len(view.Caregivers) == 0 {
			fmt.Println("  No caregivers available.")
		} else {
			fmt.Printf("  Caregivers: %s\n", strings.Join(view.Caregivers, ", "))
		}
		if len(view.Vaccines) == 0 {
			fmt.Println("  No vaccines in stock.")
		} else {
			for _, v := range view.Vaccines {
				fmt.Printf("  %s: %d doses\n", v.Name, v.Doses)
			}
		}
		return nil
	},
}

func init() {
	scheduleSearchCmd.Flags().StringVarP(&scheduleSearchDate, "date", "d", "", "date to search, YYYY-MM-DD (required)")
	scheduleSearchCmd.MarkFlagRequired("date")
	scheduleCmd.AddCommand(scheduleSearchCmd)
	rootCmd.AddCommand(scheduleCmd)
}
