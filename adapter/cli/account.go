package cli

import (
	"errors"
	"fmt"

	identityCommands "github.com/felixgeelhaar/vaxsched/internal/identity/application/commands"
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

// newAccountCommands builds the create/login subcommand pair shared by the
// patient and caregiver command groups.
func newAccountCommands(role identityDomain.Role) (*cobra.Command, *cobra.Command) {
	var username, password string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s account", role),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp()
			if app == nil {
				return errors.New("application not initialized")
			}

			result, err := app.RegisterAccountHandler.Handle(cmd.Context(), identityCommands.RegisterAccountCommand{
				Role:     role,
				Username: username,
				Password: password,
			})
			if err != nil {
				if errors.Is(err, identityDomain.ErrWeakPassword) {
					fmt.Println("Password must be at least 8 characters with upper and lower case letters, a digit, and one of !@#?")
				}
				return fmt.Errorf("failed to create %s account: %w", role, err)
			}

			fmt.Printf("Created %s account %q.\n", result.Role, result.Username)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&username, "username", "u", "", "account username (required)")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "account password (required)")
	createCmd.MarkFlagRequired("username")
	createCmd.MarkFlagRequired("password")

	var loginUsername, loginPassword string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: fmt.Sprintf("Log in as a %s", role),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp()
			if app == nil {
				return errors.New("application not initialized")
			}

			ctx := cmd.Context()
			if err := ensureLoggedOut(ctx, app); err != nil {
				if errors.Is(err, identityDomain.ErrAlreadyLoggedIn) {
					fmt.Println("Already logged in. Run `vaxsched logout` first.")
				}
				return err
			}

			result, err := app.LoginHandler.Handle(ctx, identityCommands.LoginCommand{
				Role:     role,
				Username: loginUsername,
				Password: loginPassword,
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := writeSessionToken(app, result.Session.Token()); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s %q.\n", result.Session.Role(), result.Session.Username())
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (required)")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	return createCmd, loginCmd
}
