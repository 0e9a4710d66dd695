package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/addons"
	"github.com/odooctl/odooctl/internal/conf"
	"github.com/odooctl/odooctl/internal/project"
)

const addonsPathDirective = "addons_path"

type cloneAddonsCmd struct {
	baseDir  string
	manifest string
	confFile string
	prune    bool
	preserve []string
	workers  uint
}

// NewCloneAddonsCommand creates the clone-addons command: clone or
// update every repository declared in the addons manifest, then make
// sure odoo.conf's addons_path covers the checkouts.
func NewCloneAddonsCommand() *cobra.Command {
	c := &cloneAddonsCmd{}

	cmd := &cobra.Command{
		Use:   "clone-addons",
		Short: "Clone addon repositories and update addons_path in odoo.conf",
		RunE:  c.run,
	}

	cmd.Flags().StringVar(&c.baseDir, "base-dir", "", "Base directory for checkouts (default $ADDONS_BASE_DIR or /workspace/addons)")
	cmd.Flags().StringVar(&c.manifest, "config", "", "Repository manifest (default $ADDONS_CONFIG or <root>/addons_repos.toml)")
	cmd.Flags().StringVar(&c.confFile, "conf", "", "Odoo configuration file to update (default <root>/odoo.conf)")
	cmd.Flags().BoolVar(&c.prune, "prune", false, "Drop addons_path entries that are neither cloned nor preserved")
	cmd.Flags().StringSliceVar(&c.preserve, "preserve", nil, "addons_path entries to keep when pruning")
	cmd.Flags().UintVar(&c.workers, "workers", 4, "Parallel git operations")

	return cmd
}

func (c *cloneAddonsCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := project.FindRoot()
	if err != nil {
		return err
	}

	baseDir := c.baseDir
	if baseDir == "" {
		baseDir = os.Getenv("ADDONS_BASE_DIR")
	}
	if baseDir == "" {
		baseDir = "/workspace/addons"
	}

	manifest := c.manifest
	if manifest == "" {
		manifest = os.Getenv("ADDONS_CONFIG")
	}
	if manifest == "" {
		manifest = filepath.Join(root, "addons_repos.toml")
	}

	confFile := c.confFile
	if confFile == "" {
		confFile = filepath.Join(root, "odoo.conf")
	}

	log.Info("cloning addon repositories", "base", baseDir, "manifest", manifest)

	specs, err := addons.LoadManifest(manifest)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		log.Info("no repositories found in the manifest")
		return nil
	}

	if err := addons.CloneAll(ctx, baseDir, specs, c.workers); err != nil {
		return err
	}

	return c.updateConf(confFile, addons.RepoPaths(baseDir, specs))
}

// updateConf rewrites the addons_path directive so every checkout is
// listed. Without --prune all entries already in the file are kept;
// with it only the --preserve ones survive.
func (c *cloneAddonsCmd) updateConf(confFile string, required []string) error {
	data, err := os.ReadFile(confFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("odoo.conf not found, addons_path not updated", "path", confFile)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", confFile, err)
	}
	content := string(data)

	preserve := c.preserve
	if !c.prune {
		if block, found := conf.Locate(content, addonsPathDirective); found {
			preserve = append(block.Entries, preserve...)
		}
	}

	updated, outcome := conf.Rewrite(content, addonsPathDirective, required, preserve)
	switch outcome {
	case conf.NotFound:
		log.Warn("addons_path directive not found, nothing updated", "path", confFile)
	case conf.Unchanged:
		log.Debug("addons_path already up to date", "path", confFile)
	case conf.Changed:
		if err := os.WriteFile(confFile, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", confFile, err)
		}
		log.Info("updated addons_path", "path", confFile)
	}
	return nil
}
