package addons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	flow "github.com/noneback/go-taskflow"

	"github.com/odooctl/odooctl/internal/execx"
)

// CloneAll clones or updates every repository under baseDir. The clones
// are independent, so they run as one task each on a bounded executor.
// Per-repository failures are logged and do not abort the rest of the
// flow.
func CloneAll(ctx context.Context, baseDir string, specs []RepoSpec, workers uint) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create addons base dir: %w", err)
	}
	for _, section := range Sections {
		if err := os.MkdirAll(filepath.Join(baseDir, section), 0o755); err != nil {
			return fmt.Errorf("failed to create section dir %s: %w", section, err)
		}
	}

	if workers == 0 {
		workers = 1
	}

	tf := flow.NewTaskFlow("clone-addons")
	executor := flow.NewExecutor(workers)

	for _, spec := range specs {
		tf.NewTask(spec.Section+"/"+spec.Name, func() {
			if err := cloneOrUpdate(ctx, baseDir, spec); err != nil {
				log.Error("repository sync failed", "section", spec.Section, "name", spec.Name, "error", err)
			}
		})
	}

	executor.Run(tf).Wait()
	return nil
}

// cloneOrUpdate fetches an existing checkout (switching branch when the
// manifest pins one) or clones a missing one.
func cloneOrUpdate(ctx context.Context, baseDir string, spec RepoSpec) error {
	target := spec.Dir(baseDir)

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		log.Info("repository exists, updating", "path", target)
		if err := execx.RunIn(ctx, target, "git", "fetch", "--all", "--prune"); err != nil {
			log.Warn("git fetch failed", "path", target, "error", err)
		}
		if spec.Branch != "" {
			if err := execx.RunIn(ctx, target, "git", "checkout", spec.Branch); err != nil {
				log.Warn("git checkout failed", "path", target, "branch", spec.Branch, "error", err)
			}
		}
		return nil
	}

	log.Info("cloning repository", "url", spec.URL, "path", target)
	args := []string{"clone"}
	if spec.Branch != "" {
		args = append(args, "--branch", spec.Branch, "--single-branch")
	}
	args = append(args, spec.URL, target)
	if err := execx.Run(ctx, "git", args...); err != nil {
		return fmt.Errorf("failed to clone %s: %w", spec.URL, err)
	}
	return nil
}
