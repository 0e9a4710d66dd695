// Package execx runs external commands with the process stdio attached
// or captured. Every invocation is logged at debug level.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Run executes a command with stdin, stdout and stderr attached to the
// current process.
func Run(ctx context.Context, name string, args ...string) error {
	log.Debug("running command", "cmd", name+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunIn is Run with a working directory.
func RunIn(ctx context.Context, dir, name string, args ...string) error {
	log.Debug("running command", "dir", dir, "cmd", name+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output executes a command and returns its standard output. On failure
// the error carries the command's standard error.
func Output(ctx context.Context, name string, args ...string) (string, error) {
	log.Debug("running command", "cmd", name+" "+strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Quiet executes a command discarding its output; only the exit status
// is reported.
func Quiet(ctx context.Context, name string, args ...string) error {
	_, err := Output(ctx, name, args...)
	return err
}
