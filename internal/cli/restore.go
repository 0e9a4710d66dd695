package cli

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
	"github.com/odooctl/odooctl/internal/execx"
	"github.com/odooctl/odooctl/internal/project"
)

type restoreCmd struct {
	database string
	targetDB string
}

// NewRestoreCommand creates the restore-backup command.
func NewRestoreCommand() *cobra.Command {
	r := &restoreCmd{}

	cmd := &cobra.Command{
		Use:   "restore-backup",
		Short: "Restore a database and filestore from a backup",
		Long: `Restore a database and filestore from a backup archive (.tar.gz or
.zip, Odoo web export or odooctl create-backup). The newest archive
whose name starts with the given prefix is used.`,
		RunE: r.run,
	}

	cmd.Flags().StringVarP(&r.database, "database", "d", "", "Original backup name prefix")
	cmd.Flags().StringVar(&r.targetDB, "to", "", "New database name to restore to")
	_ = cmd.MarkFlagRequired("database")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (r *restoreCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	settings, err := project.LoadSettings()
	if err != nil {
		return err
	}

	backupPath, err := latestBackup(filepath.Join(root, "backups"), r.database)
	if err != nil {
		return err
	}

	workDir := filepath.Join(os.TempDir(),
		fmt.Sprintf("restore_%s_%s", r.targetDB, time.Now().Format("20060102150405")))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if strings.HasSuffix(backupPath, ".zip") {
		log.Info("extracting zip backup", "archive", filepath.Base(backupPath))
		if err := extractZip(backupPath, workDir); err != nil {
			return err
		}
	} else {
		log.Info("extracting tar backup", "archive", filepath.Base(backupPath))
		if err := execx.Quiet(ctx, "tar", "-xzf", backupPath, "-C", workDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", backupPath, err)
		}
	}

	pg := settings.PostgresContainer()

	log.Info("dropping existing database if any", "database", r.targetDB)
	err = dockerx.Exec(ctx, pg, pgEnv(settings),
		"dropdb", "--if-exists", "-h", "localhost", "-U", settings.PostgresUser, r.targetDB)
	if err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	log.Info("creating database", "database", r.targetDB)
	err = dockerx.Exec(ctx, pg, pgEnv(settings),
		"createdb", "-h", "localhost", "-U", settings.PostgresUser, r.targetDB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	log.Info("restoring from SQL dump", "database", r.targetDB)
	sqlDump := filepath.Join(workDir, "dump.sql")
	if _, err := os.Stat(sqlDump); err != nil {
		return fmt.Errorf("SQL dump file 'dump.sql' not found in backup")
	}
	if err := dockerx.Cp(ctx, sqlDump, pg+":/tmp/dump.sql"); err != nil {
		return fmt.Errorf("failed to copy dump into container: %w", err)
	}
	err = dockerx.Exec(ctx, pg, pgEnv(settings),
		"psql", "-h", "localhost", "-U", settings.PostgresUser, "-d", r.targetDB, "-f", "/tmp/dump.sql")
	if err != nil {
		return fmt.Errorf("failed to restore dump: %w", err)
	}

	filestoreSrc := filepath.Join(workDir, "filestore")
	if _, err := os.Stat(filestoreSrc); err == nil {
		log.Info("restoring filestore", "database", r.targetDB)
		odoo := settings.OdooContainer()
		target := filestoreRoot + "/" + r.targetDB
		if err := dockerx.Exec(ctx, odoo, dockerx.ExecOptions{}, "mkdir", "-p", target); err != nil {
			return fmt.Errorf("failed to create filestore dir: %w", err)
		}
		if err := dockerx.Cp(ctx, filestoreSrc+"/.", odoo+":"+target); err != nil {
			return fmt.Errorf("failed to copy filestore into container: %w", err)
		}
	} else {
		log.Warn("no filestore found in backup, skipping filestore restore")
	}

	log.Info("restore completed", "database", r.targetDB)
	return nil
}

// latestBackup returns the newest backup archive in dir whose name
// starts with prefix. Both tar.gz and zip archives qualify, as does a
// file named exactly prefix.
func latestBackup(dir, prefix string) (string, error) {
	candidates := make(map[string]struct{})
	for _, pattern := range []string{prefix + "*.tar.gz", prefix + "*.zip"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("bad backup pattern: %w", err)
		}
		for _, match := range matches {
			candidates[match] = struct{}{}
		}
	}
	exact := filepath.Join(dir, prefix)
	if _, err := os.Stat(exact); err == nil {
		candidates[exact] = struct{}{}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no backup found for '%s'", prefix)
	}

	paths := make([]string, 0, len(candidates))
	for path := range candidates {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return mtime(paths[i]).After(mtime(paths[j]))
	})
	return paths[0], nil
}

func mtime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// extractZip unpacks an archive into dest, refusing entries that would
// escape it.
func extractZip(archive, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open zip %s: %w", archive, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target := filepath.Join(dest, entry.Name)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("zip entry escapes destination: %s", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to read zip entry %s: %w", entry.Name, err)
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
		}
	}
	return nil
}
