package cli

import (
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/odools"
	"github.com/odooctl/odooctl/internal/project"
)

// NewOdoolsCommand creates the odools command group for managing the
// odoo-ls language server setup (config generation and source
// vendoring).
func NewOdoolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odools",
		Short: "Odoo LS config utilities",
	}

	cmd.AddCommand(newOdoolsInitCommand())
	cmd.AddCommand(newOdoolsSyncCommand())
	cmd.AddCommand(newOdoolsMakeCommand())

	return cmd
}

type odoolsInitCmd struct {
	profile      string
	noAutodetect bool
}

func newOdoolsInitCommand() *cobra.Command {
	o := &odoolsInitCmd{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate odools.toml with absolute paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := loadProjectRoot()
			if err != nil {
				return err
			}
			return odools.WriteConfig(root, settings, odools.ConfigOptions{
				Profile:        o.profile,
				WithAutodetect: !o.noAutodetect,
			})
		},
	}

	cmd.Flags().StringVar(&o.profile, "profile", "main", "Profile name to write")
	cmd.Flags().BoolVar(&o.noAutodetect, "no-autodetect", false, "Skip adding $autoDetectAddons")

	return cmd
}

type odoolsSyncCmd struct {
	force bool
}

func newOdoolsSyncCommand() *cobra.Command {
	o := &odoolsSyncCmd{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the Odoo sources into ./vendor/odoo-<version>",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := loadProjectRoot()
			if err != nil {
				return err
			}
			return odools.Sync(cmd.Context(), root, settings, o.force)
		},
	}

	cmd.Flags().BoolVar(&o.force, "force", false, "Delete an existing vendor/odoo-<version> before syncing")

	return cmd
}

type odoolsMakeCmd struct {
	profile      string
	force        bool
	noAutodetect bool
}

func newOdoolsMakeCommand() *cobra.Command {
	o := &odoolsMakeCmd{}

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Run init then sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, settings, err := loadProjectRoot()
			if err != nil {
				return err
			}
			err = odools.WriteConfig(root, settings, odools.ConfigOptions{
				Profile:        o.profile,
				WithAutodetect: !o.noAutodetect,
			})
			if err != nil {
				return err
			}
			return odools.Sync(cmd.Context(), root, settings, o.force)
		},
	}

	cmd.Flags().StringVar(&o.profile, "profile", "main", "Profile name to write")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing vendor/odoo-<version>")
	cmd.Flags().BoolVar(&o.noAutodetect, "no-autodetect", false, "Skip adding $autoDetectAddons")

	return cmd
}

func loadProjectRoot() (string, project.Settings, error) {
	root, err := project.FindRoot()
	if err != nil {
		return "", project.Settings{}, err
	}
	settings, err := project.LoadSettings()
	if err != nil {
		return "", project.Settings{}, err
	}
	return root, settings, nil
}
