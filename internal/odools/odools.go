// Package odools manages the odoo-ls editor tooling for a project: it
// generates odools.toml and mirrors the Odoo source tree out of the
// container into vendor/ so the language server can index it.
package odools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/odooctl/odooctl/internal/dockerx"
	"github.com/odooctl/odooctl/internal/execx"
	"github.com/odooctl/odooctl/internal/project"
)

// vendorMountPath is where compose projects overlay a vendored Odoo
// tree inside the container. When this mount is present, a running
// container no longer exposes the image's pristine sources.
const vendorMountPath = "/usr/lib/python3/dist-packages/odoo"

// detectDirsSnippet prints the odoo package directories, namespace
// packages included.
const detectDirsSnippet = `import importlib.util
spec = importlib.util.find_spec("odoo")
locs = list((spec.submodule_search_locations or []))
print("\n".join(locs))
`

// VendorDir returns the vendored Odoo tree location for a version.
func VendorDir(root, version string) string {
	return filepath.Join(root, "vendor", "odoo-"+version)
}

// ConfigOptions controls odools.toml generation.
type ConfigOptions struct {
	// Profile names the [[config]] block.
	Profile string
	// WithAutodetect adds $autoDetectAddons to addons_paths.
	WithAutodetect bool
}

// WriteConfig generates odools.toml at the project root in the
// [[config]] format of odoo-ls 1.0.x, using absolute paths throughout.
func WriteConfig(root string, settings project.Settings, opts ConfigOptions) error {
	if settings.OdooVersion == "" {
		return fmt.Errorf("ODOO_VERSION not set in .env")
	}

	odooPath, err := filepath.Abs(VendorDir(root, settings.OdooVersion))
	if err != nil {
		return fmt.Errorf("failed to resolve vendor path: %w", err)
	}
	mainAddons, err := filepath.Abs(filepath.Join(root, "src"))
	if err != nil {
		return fmt.Errorf("failed to resolve src path: %w", err)
	}

	pythonPath := "/usr/bin/python3"
	if found, err := exec.LookPath("python3"); err == nil {
		pythonPath = found
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	typeshed := filepath.Join(home, ".local", "share", "nvim", "odoo", "typeshed")

	content := renderConfig(opts.Profile, odooPath, mainAddons, pythonPath,
		filepath.Join(typeshed, "stdlib"), filepath.Join(typeshed, "stubs"), opts.WithAutodetect)

	path := filepath.Join(root, "odools.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info("wrote odools config", "path", path, "profile", opts.Profile)
	return nil
}

func renderConfig(profile, odooPath, mainAddons, pythonPath, stdlib, extraStub string, withAutodetect bool) string {
	addonsPaths := []string{mainAddons}
	if withAutodetect {
		addonsPaths = append(addonsPaths, "$autoDetectAddons")
	}

	lines := []string{
		"[[config]]",
		fmt.Sprintf("name = %q", profile),
		fmt.Sprintf("odoo_path = %q", odooPath),
		"addons_paths = [",
	}
	for _, item := range addonsPaths {
		lines = append(lines, fmt.Sprintf("  %q,", item))
	}
	lines = append(lines,
		"]",
		fmt.Sprintf("python_path = %q", pythonPath),
		"additional_stubs = [",
		fmt.Sprintf("  %q,", extraStub),
		"]",
		fmt.Sprintf("stdlib = %q", stdlib),
		"",
	)
	return strings.Join(lines, "\n")
}

// Sync mirrors the Odoo package sources into vendor/odoo-<version>.
// When the running container overlays the vendor tree, a temporary
// container from the image is used instead, so the copy always reflects
// the image contents.
func Sync(ctx context.Context, root string, settings project.Settings, force bool) error {
	if settings.OdooVersion == "" {
		return fmt.Errorf("ODOO_VERSION not set in .env")
	}

	container := settings.OdooContainer()
	vendorDir := VendorDir(root, settings.OdooVersion)

	if _, err := os.Stat(vendorDir); err == nil {
		if !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", vendorDir)
		}
		if err := os.RemoveAll(vendorDir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", vendorDir, err)
		}
	}
	if err := os.MkdirAll(vendorDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", vendorDir, err)
	}

	// The PoS icon font trips up tar's sparse handling on some hosts.
	excludes := append([]string{"addons/point_of_sale/static/src/fonts/Inconsolata.otf"}, settings.SyncExcludes...)

	source := container
	if dockerx.HasMountAt(ctx, container, vendorMountPath) {
		imageID, err := dockerx.ImageID(ctx, container)
		if err != nil {
			return err
		}

		log.Info("vendor overlay mount detected, copying from a temporary container", "image", shortID(imageID))
		source = settings.ProjectName + "_odoo_sync_tmp"
		_ = execx.Quiet(ctx, "docker", "rm", "-f", source)
		if err := execx.Quiet(ctx, "docker", "run", "-d", "--name", source, imageID, "sleep", "infinity"); err != nil {
			return fmt.Errorf("failed to start temporary container: %w", err)
		}
		defer func() {
			_ = execx.Quiet(context.WithoutCancel(ctx), "docker", "rm", "-f", source)
		}()
	}

	dirs := detectOdooDirs(ctx, source)
	if len(dirs) == 0 {
		dirs = []string{vendorMountPath}
	}

	log.Info("copying odoo sources", "from", source, "dirs", strings.Join(dirs, ", "), "dest", vendorDir)
	for _, src := range dirs {
		if err := dockerx.StreamTar(ctx, source, src, vendorDir, excludes); err != nil {
			return err
		}
	}

	if !looksLikeOdooTree(vendorDir) {
		return fmt.Errorf("sync ended but %s looks empty, expected __init__.py or addons/", vendorDir)
	}

	log.Info("sync completed", "dest", vendorDir)
	return nil
}

// detectOdooDirs asks python inside the container where the odoo
// package lives. An empty result means the caller should fall back to
// the conventional dist-packages path.
func detectOdooDirs(ctx context.Context, container string) []string {
	out, err := dockerx.ExecOutput(ctx, container, dockerx.ExecOptions{}, "python3", "-c", detectDirsSnippet)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			dirs = append(dirs, line)
		}
	}
	return dirs
}

func looksLikeOdooTree(dir string) bool {
	for _, name := range []string{"__init__.py", "addons"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
