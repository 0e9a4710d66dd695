package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
	"github.com/odooctl/odooctl/internal/execx"
	"github.com/odooctl/odooctl/internal/project"
)

const filestoreRoot = "/var/lib/odoo/filestore"

type backupCmd struct {
	database string
}

// NewBackupCommand creates the create-backup command.
func NewBackupCommand() *cobra.Command {
	b := &backupCmd{}

	cmd := &cobra.Command{
		Use:   "create-backup",
		Short: "Create a backup of the database and filestore",
		RunE:  b.run,
	}

	cmd.Flags().StringVarP(&b.database, "database", "d", "", "Database name")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func (b *backupCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	settings, err := project.LoadSettings()
	if err != nil {
		return err
	}

	backupName := fmt.Sprintf("%s_%s", b.database, time.Now().Format("20060102150405"))
	workDir := filepath.Join(os.TempDir(), backupName)
	backupsDir := filepath.Join(root, "backups")

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working dir: %w", err)
	}
	defer os.RemoveAll(workDir)
	if err := os.MkdirAll(backupsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backups dir: %w", err)
	}

	// Both formats on purpose: the binary dump restores fast, the plain
	// one stays greppable and survives pg_restore version skew.
	log.Info("dumping database (binary)", "database", b.database)
	if err := b.dump(ctx, settings, "c", filepath.Join(workDir, "dump.dump")); err != nil {
		return err
	}

	log.Info("dumping database (plain SQL)", "database", b.database)
	if err := b.dump(ctx, settings, "p", filepath.Join(workDir, "dump.sql")); err != nil {
		return err
	}

	log.Info("copying filestore", "database", b.database)
	filestorePath := filestoreRoot + "/" + b.database
	odoo := settings.OdooContainer()
	if !dockerx.PathExists(ctx, odoo, filestorePath) {
		log.Warn("filestore not found in container, continuing without it", "path", filestorePath)
	} else {
		if err := dockerx.Cp(ctx, odoo+":"+filestorePath, filepath.Join(workDir, "filestore")); err != nil {
			return fmt.Errorf("failed to copy filestore: %w", err)
		}
	}

	archive := filepath.Join(backupsDir, backupName+".tar.gz")
	log.Info("compressing backup", "archive", archive)
	if err := execx.Quiet(ctx, "tar", "-C", workDir, "-czf", archive, "."); err != nil {
		return fmt.Errorf("failed to compress backup: %w", err)
	}

	log.Info("backup completed", "archive", archive)
	return nil
}

// dump runs pg_dump inside the postgres container in the given format
// and moves the result to local on the host.
func (b *backupCmd) dump(ctx context.Context, settings project.Settings, format, local string) error {
	pg := settings.PostgresContainer()
	remote := "/tmp/" + filepath.Base(local)

	err := dockerx.Exec(ctx, pg, pgEnv(settings),
		"pg_dump", "-F"+format, "-h", "localhost", "-U", settings.PostgresUser,
		"-d", b.database, "-f", remote)
	if err != nil {
		return fmt.Errorf("pg_dump failed: %w", err)
	}
	if err := dockerx.Cp(ctx, pg+":"+remote, local); err != nil {
		return fmt.Errorf("failed to copy dump out of container: %w", err)
	}
	return dockerx.Exec(ctx, pg, dockerx.ExecOptions{}, "rm", remote)
}
