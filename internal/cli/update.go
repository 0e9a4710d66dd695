package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
)

type updateModuleCmd struct {
	database      string
	modules       string
	showLogs      bool
	stopAfterInit bool
}

// NewUpdateModuleCommand creates the update-module command.
func NewUpdateModuleCommand() *cobra.Command {
	u := &updateModuleCmd{}

	cmd := &cobra.Command{
		Use:   "update-module",
		Short: "Update Odoo modules inside the running container",
		RunE:  u.run,
	}

	cmd.Flags().StringVarP(&u.database, "database", "d", "", "Database name")
	cmd.Flags().StringVarP(&u.modules, "modules", "m", "", "Module(s) to update (comma-separated or 'all')")
	cmd.Flags().BoolVar(&u.showLogs, "show-logs", false, "Show full Odoo logs")
	cmd.Flags().BoolVar(&u.stopAfterInit, "stop-after-init", false, "Stop server after update")
	_ = cmd.MarkFlagRequired("database")
	_ = cmd.MarkFlagRequired("modules")

	return cmd
}

func (u *updateModuleCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadProject()
	if err != nil {
		return err
	}

	command := []string{"odoo", "-d", u.database, "-u", u.modules}
	if u.stopAfterInit {
		command = append(command, "--stop-after-init")
	}

	log.Info("updating modules", "modules", u.modules, "database", u.database)

	opts := dockerx.ExecOptions{User: "odoo"}
	if u.showLogs {
		err = dockerx.Exec(ctx, settings.OdooContainer(), opts, command...)
	} else {
		_, err = dockerx.ExecOutput(ctx, settings.OdooContainer(), opts, command...)
	}
	if err != nil {
		return fmt.Errorf("module update failed (re-run with --show-logs for details): %w", err)
	}

	log.Info("modules updated", "modules", u.modules, "database", u.database)
	return nil
}
