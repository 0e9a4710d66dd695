package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
	"github.com/odooctl/odooctl/internal/execx"
)

type shellCmd struct {
	shell string
}

// NewShellCommand creates the sh command.
func NewShellCommand() *cobra.Command {
	s := &shellCmd{}

	cmd := &cobra.Command{
		Use:   "sh [service]",
		Short: "Open a shell in a project container (default: odoo)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := "odoo"
			if len(args) > 0 {
				service = args[0]
			}
			return s.run(cmd, service)
		},
	}

	cmd.Flags().StringVarP(&s.shell, "shell", "s", "bash", "Shell to use (bash, sh, zsh, etc.)")

	return cmd
}

func (s *shellCmd) run(cmd *cobra.Command, service string) error {
	ctx := cmd.Context()

	settings, err := loadProject()
	if err != nil {
		return err
	}
	container := settings.Container(service)

	running, err := dockerx.RunningContainers(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(running, container) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Container '%s' not found.\n", container)
		fmt.Fprintln(out, "Available containers for this project:")
		prefix := settings.ProjectName + "_"
		for _, name := range running {
			if strings.HasPrefix(name, prefix) {
				fmt.Fprintf(out, "  - %s\n", strings.TrimPrefix(name, prefix))
			}
		}
		fmt.Fprintln(out, "\nTry: odooctl sh [service]")
		return nil
	}

	log.Info("connecting to shell", "container", container)
	return dockerx.Exec(ctx, container, dockerx.ExecOptions{Interactive: true}, s.shell)
}

// NewPSCommand creates the ps command.
func NewPSCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List running containers for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadProject()
			if err != nil {
				return err
			}
			log.Info("project containers", "project", settings.ProjectName)
			return execx.Run(cmd.Context(), "docker", "ps", "--filter", "name="+settings.ProjectName)
		},
	}
}
