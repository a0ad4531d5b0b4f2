package cli

import (
	identityDomain "github.com/felixgeelhaar/vaxsched/internal/identity/domain"
	"github.com/spf13/cobra"
)

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage patient accounts",
}

func init() {
	createCmd, loginCmd := newAccountCommands(identityDomain.RolePatient)
	patientCmd.AddCommand(createCmd)
	patientCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(patientCmd)
}
