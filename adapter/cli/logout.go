package cli

import (
	"errors"
	"fmt"

	identityCommands "github.com/felixgeelhaar/vaxsched/internal/identity/application/commands"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errors.New("application not initialized")
		}

		token, err := readSessionToken(app)
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		err = app.LogoutHandler.Handle(cmd.Context(), identityCommands.LogoutCommand{Token: token})
		if err != nil && !errors.Is(err, identityDomain.ErrSessionNotFound) {
			return fmt.Errorf("logout failed: %w", err)
		}

		if err := clearSessionToken(app); err != nil {
			return err
		}

		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
