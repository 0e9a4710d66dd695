package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/execx"
	"github.com/odooctl/odooctl/internal/project"
)

type buildCmd struct {
	noCache bool
}

// NewBuildCommand creates the build command. The Dockerfile for the
// configured ODOO_VERSION is copied into place before docker compose
// build runs.
func NewBuildCommand() *cobra.Command {
	b := &buildCmd{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build/rebuild Docker images for the project",
		RunE:  b.run,
	}

	cmd.Flags().BoolVar(&b.noCache, "no-cache", false, "Build Docker images without cache")

	return cmd
}

func (b *buildCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	settings, err := project.LoadSettings()
	if err != nil {
		return err
	}
	if settings.OdooVersion == "" {
		return fmt.Errorf("ODOO_VERSION not set in .env")
	}

	src := filepath.Join(root, "Dockerfiles", settings.OdooVersion, "Dockerfile")
	dest := filepath.Join(root, "Dockerfile")
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("Dockerfile for Odoo version %s not found at %s", settings.OdooVersion, src)
	}
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("failed to copy Dockerfile: %w", err)
	}
	log.Info("selected Dockerfile", "src", src, "dest", dest)

	log.Info("building Docker images")
	buildArgs := []string{"compose", "build"}
	if b.noCache {
		buildArgs = append(buildArgs, "--no-cache")
	}
	if err := execx.RunIn(ctx, root, "docker", buildArgs...); err != nil {
		return fmt.Errorf("build failed, check the logs: %w", err)
	}

	log.Info("build completed")
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
