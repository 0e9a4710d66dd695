package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the odooctl command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "odooctl",
		Short: "Unified Odoo operations CLI",
		Long: `odooctl operates a docker compose based Odoo stack: database
backups and restores, module updates, user management, shell access,
image builds, dependency installs, addon repository cloning and
vendoring of the Odoo sources for editor tooling.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(os.Stderr, "Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(NewDBCommand())
	rootCmd.AddCommand(NewBackupCommand())
	rootCmd.AddCommand(NewRestoreCommand())
	rootCmd.AddCommand(NewUpdateModuleCommand())
	rootCmd.AddCommand(NewManageUserCommand())
	rootCmd.AddCommand(NewShellCommand())
	rootCmd.AddCommand(NewPSCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewRequirementsCommand())
	rootCmd.AddCommand(NewPgAdminCommand())
	rootCmd.AddCommand(NewWaitDBCommand())
	rootCmd.AddCommand(NewCloneAddonsCommand())
	rootCmd.AddCommand(NewOdoolsCommand())

	return rootCmd
}
