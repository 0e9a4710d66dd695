package cli

import (
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/execx"
)

// NewPgAdminCommand creates the pgadmin command.
func NewPgAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pgadmin",
		Short: "Open PgAdmin in your browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadProject()
			if err != nil {
				return err
			}

			url := "http://localhost:" + settings.PgAdminPort
			log.Info("opening PgAdmin", "url", url)

			opener := "xdg-open"
			if runtime.GOOS == "darwin" {
				opener = "open"
			}
			if err := execx.Quiet(cmd.Context(), opener, url); err != nil {
				log.Warn("could not open a browser, open the URL manually", "url", url, "error", err)
			}
			return nil
		},
	}
}
