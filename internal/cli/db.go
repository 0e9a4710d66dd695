package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
	"github.com/odooctl/odooctl/internal/project"
)

const listDatabasesSQL = "SELECT datname FROM pg_database WHERE datistemplate = false;"

// NewDBCommand creates the db command group (list, drop).
func NewDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities for the project (list, drop)",
	}

	cmd.AddCommand(newDBListCommand())
	cmd.AddCommand(newDBDropCommand())

	return cmd
}

func newDBListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadProject()
			if err != nil {
				return err
			}
			return psql(cmd, settings, "postgres", listDatabasesSQL)
		},
	}
}

type dbDropCmd struct {
	force bool
}

func newDBDropCommand() *cobra.Command {
	d := &dbDropCmd{}

	cmd := &cobra.Command{
		Use:   "drop <database>",
		Short: "Drop a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.run(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&d.force, "force", false, "Do not prompt for confirmation")

	return cmd
}

func (d *dbDropCmd) run(cmd *cobra.Command, database string) error {
	settings, err := loadProject()
	if err != nil {
		return err
	}

	if !d.force && !confirm(cmd, fmt.Sprintf("Are you sure you want to permanently DROP the database '%s'?", database)) {
		log.Info("operation cancelled")
		return nil
	}

	// Sessions still attached to the database would make dropdb fail.
	terminateSQL := fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid();",
		database)
	if err := psql(cmd, settings, "postgres", terminateSQL); err != nil {
		return fmt.Errorf("failed to terminate connections: %w", err)
	}

	err = dockerx.Exec(cmd.Context(), settings.PostgresContainer(),
		pgEnv(settings), "dropdb", "-U", settings.PostgresUser, database)
	if err != nil {
		return fmt.Errorf("failed to drop database %s: %w", database, err)
	}

	log.Info("database dropped", "database", database)
	return nil
}

// loadProject resolves the project root (loading .env) and the settings
// derived from it.
func loadProject() (project.Settings, error) {
	if _, err := project.FindRoot(); err != nil {
		return project.Settings{}, err
	}
	return project.LoadSettings()
}

func pgEnv(settings project.Settings) dockerx.ExecOptions {
	return dockerx.ExecOptions{Env: []string{"PGPASSWORD=" + settings.PostgresPassword}}
}

// psql runs a single SQL statement in the postgres container with the
// output attached to the terminal.
func psql(cmd *cobra.Command, settings project.Settings, database, sql string) error {
	return dockerx.Exec(cmd.Context(), settings.PostgresContainer(), pgEnv(settings),
		"psql", "--host", "localhost", "-U", settings.PostgresUser, "-d", database, "-c", sql)
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
