package cli

import (
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

var caregiverCmd = &cobra.Command{
	Use:   "caregiver",
	Short: "Manage caregiver accounts",
}

func init() {
	createCmd, loginCmd := newAccountCommands(identityDomain.RoleCaregiver)
	caregiverCmd.AddCommand(createCmd)
	caregiverCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(caregiverCmd)
}
