package cli

import (
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odooctl/odooctl/internal/dockerx"
)

type waitDBCmd struct {
	timeout time.Duration
}

// NewWaitDBCommand creates the wait-db command, used by entrypoints and
// scripts to block until postgres accepts connections.
func NewWaitDBCommand() *cobra.Command {
	w := &waitDBCmd{}

	cmd := &cobra.Command{
		Use:   "wait-db",
		Short: "Wait for the PostgreSQL container to accept connections",
		RunE:  w.run,
	}

	cmd.Flags().DurationVar(&w.timeout, "timeout", 5*time.Second, "How long to keep trying")

	return cmd
}

func (w *waitDBCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadProject()
	if err != nil {
		return err
	}

	attempts := uint(w.timeout / time.Second)
	if attempts == 0 {
		attempts = 1
	}

	err = retry.Do(
		func() error {
			_, err := dockerx.ExecOutput(ctx, settings.PostgresContainer(), pgEnv(settings),
				"pg_isready", "-h", "localhost", "-U", settings.PostgresUser, "-d", "postgres", "-t", "1")
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("waiting for PostgreSQL", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("database connection failure: %w", err)
	}

	log.Info("PostgreSQL is ready")
	return nil
}
