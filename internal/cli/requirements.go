package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/execx"
	"github.com/odooctl/odooctl/internal/project"
)

// pip flags: user-level installs need --break-system-packages on the
// Debian based Odoo images.
var pipBaseFlags = []string{"--break-system-packages"}

type requirementsCmd struct {
	mode      string
	file      string
	service   string
	withCache bool
}

// NewRequirementsCommand creates the requirements command.
func NewRequirementsCommand() *cobra.Command {
	r := &requirementsCmd{}

	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Install Python dependencies inside the Odoo container",
		Long: `Install Python dependencies inside the Odoo container.

  - mode=auto: scans /mnt/extra-addons inside the container for requirements.txt files.
  - mode=file: installs dependencies from a single requirements file on the host.`,
		RunE: r.run,
	}

	cmd.Flags().StringVar(&r.mode, "mode", "file", "Installation mode: auto or file")
	cmd.Flags().StringVar(&r.file, "file", "odoo/requirements.txt", "Path to the requirements file on the host (mode=file)")
	cmd.Flags().StringVar(&r.service, "service", "odoo", "Name of the Odoo service in docker compose")
	cmd.Flags().BoolVar(&r.withCache, "with-cache", false, "Enable pip cache")

	return cmd
}

func (r *requirementsCmd) run(cmd *cobra.Command, args []string) error {
	if _, err := project.FindRoot(); err != nil {
		return err
	}

	pipFlags := pipBaseFlags
	if !r.withCache {
		pipFlags = append([]string{"--no-cache-dir"}, pipFlags...)
	}

	switch strings.ToLower(r.mode) {
	case "auto":
		return r.runAuto(cmd, pipFlags)
	case "file":
		return r.runFile(cmd, pipFlags)
	default:
		return fmt.Errorf("unknown mode: %s", r.mode)
	}
}

// runAuto installs every requirements.txt found under /mnt/extra-addons
// inside the container, via a single container-side shell loop.
func (r *requirementsCmd) runAuto(cmd *cobra.Command, pipFlags []string) error {
	log.Info("auto mode: scanning for requirements.txt inside /mnt/extra-addons")

	script := strings.Join([]string{
		"set -e;",
		"FOUND=0;",
		"while IFS= read -r -d '' req; do",
		"  FOUND=1;",
		`  echo "Installing dependencies from $req";`,
		fmt.Sprintf(`  python3 -m pip install %s -r "$req";`, strings.Join(pipFlags, " ")),
		"done < <(find /mnt/extra-addons -type f -name 'requirements.txt' -print0);",
		"if [ $FOUND -eq 0 ]; then",
		"  echo 'No requirements.txt files were found inside /mnt/extra-addons';",
		"fi",
	}, "\n")

	err := execx.Run(cmd.Context(), "docker", "compose", "exec", "-T", r.service, "bash", "-lc", script)
	if err != nil {
		return fmt.Errorf("failed to install dependencies in auto mode, ensure the '%s' service is running (docker compose up -d): %w", r.service, err)
	}

	log.Info("requirements installation completed", "mode", "auto")
	return nil
}

// runFile parses a host requirements file and installs its specifiers
// in one pip run inside the container.
func (r *requirementsCmd) runFile(cmd *cobra.Command, pipFlags []string) error {
	data, err := os.ReadFile(r.file)
	if err != nil {
		return fmt.Errorf("requirements file not found on host: %s", r.file)
	}

	specs, err := parseRequirements(string(data))
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		log.Info("requirements file is empty, nothing to install", "file", r.file)
		return nil
	}

	log.Info("file mode: installing dependencies inside the container", "file", r.file, "packages", len(specs))

	execArgs := append([]string{"compose", "exec", "-T", r.service, "python3", "-m", "pip", "install"}, pipFlags...)
	execArgs = append(execArgs, specs...)
	if err := execx.Run(cmd.Context(), "docker", execArgs...); err != nil {
		return fmt.Errorf("failed to install dependencies from %s, ensure the '%s' service is running (docker compose up -d): %w", r.file, r.service, err)
	}

	log.Info("requirements installation completed", "mode", "file")
	return nil
}

// parseRequirements extracts package specifiers from a requirements
// file, skipping blanks and comments. Advanced pip directives are
// rejected rather than mistranslated into package names.
func parseRequirements(content string) ([]string, error) {
	var specs []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, directive := range []string{"-r ", "--requirement", "-f ", "--find-links"} {
			if strings.HasPrefix(line, directive) {
				return nil, fmt.Errorf("advanced pip directives (-r, --requirement, -f, --find-links) are not supported; install these manually or use mode=auto")
			}
		}
		specs = append(specs, line)
	}
	return specs, nil
}
