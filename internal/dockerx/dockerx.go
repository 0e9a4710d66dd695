// Package dockerx wraps the docker binary for the handful of operations
// the CLI performs against project containers: exec, cp, inspect and
// tar-streamed copies out of a container filesystem.
package dockerx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/odooctl/odooctl/internal/execx"
)

// ExecOptions controls how a command is executed inside a container.
type ExecOptions struct {
	// Env is extra environment for the command, as KEY=VALUE pairs.
	Env []string
	// User runs the command as a specific user (docker exec -u).
	User string
	// Interactive allocates a TTY and wires stdin (docker exec -it).
	Interactive bool
}

// execArgs builds the argument list for docker exec.
func execArgs(container string, opts ExecOptions, command []string) []string {
	args := []string{"exec"}
	if opts.Interactive {
		args = append(args, "-it")
	}
	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}
	for _, kv := range opts.Env {
		args = append(args, "-e", kv)
	}
	args = append(args, container)
	return append(args, command...)
}

// Exec runs a command inside a container with stdio attached.
func Exec(ctx context.Context, container string, opts ExecOptions, command ...string) error {
	return execx.Run(ctx, "docker", execArgs(container, opts, command)...)
}

// ExecOutput runs a command inside a container and returns its output.
func ExecOutput(ctx context.Context, container string, opts ExecOptions, command ...string) (string, error) {
	return execx.Output(ctx, "docker", execArgs(container, opts, command)...)
}

// Cp copies between the host and a container; src and dst use docker cp
// notation (container:path or plain host path).
func Cp(ctx context.Context, src, dst string) error {
	return execx.Quiet(ctx, "docker", "cp", src, dst)
}

// PathExists reports whether a directory exists inside a container.
func PathExists(ctx context.Context, container, path string) bool {
	err := execx.Quiet(ctx, "docker", "exec", container, "test", "-d", path)
	return err == nil
}

// RunningContainers returns the names of all running containers.
func RunningContainers(ctx context.Context) ([]string, error) {
	out, err := execx.Output(ctx, "docker", "ps", "--format", "{{.Names}}")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// inspectInfo is the subset of docker inspect output the CLI reads.
type inspectInfo struct {
	Image  string `json:"Image"`
	Mounts []struct {
		Destination string `json:"Destination"`
	} `json:"Mounts"`
}

func inspect(ctx context.Context, container string) (*inspectInfo, error) {
	out, err := execx.Output(ctx, "docker", "inspect", container)
	if err != nil {
		return nil, fmt.Errorf("cannot inspect container %s: %w", container, err)
	}
	var info []inspectInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("cannot parse docker inspect output for %s: %w", container, err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("no inspect data for container %s", container)
	}
	return &info[0], nil
}

// ImageID returns the image a container was created from.
func ImageID(ctx context.Context, container string) (string, error) {
	info, err := inspect(ctx, container)
	if err != nil {
		return "", err
	}
	return info.Image, nil
}

// HasMountAt reports whether a container has a volume mounted at the
// given destination.
func HasMountAt(ctx context.Context, container, destination string) bool {
	info, err := inspect(ctx, container)
	if err != nil {
		return false
	}
	for _, mount := range info.Mounts {
		if mount.Destination == destination {
			return true
		}
	}
	return false
}

// tarCreateArgs builds the in-container tar command used by StreamTar.
func tarCreateArgs(container, srcDir string, excludes []string) []string {
	args := []string{"exec", container, "tar", "-C", srcDir}
	for _, pattern := range excludes {
		args = append(args, "--exclude="+pattern)
	}
	return append(args, "-cf", "-", ".")
}

// StreamTar copies the contents of srcDir inside a container into dest
// on the host by piping tar create in the container into tar extract on
// the host. Streaming avoids docker cp's symlink handling issues.
func StreamTar(ctx context.Context, container, srcDir, dest string, excludes []string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	srcCmd := exec.CommandContext(ctx, "docker", tarCreateArgs(container, srcDir, excludes)...)
	var srcStderr bytes.Buffer
	srcCmd.Stderr = &srcStderr

	pipe, err := srcCmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open tar pipe: %w", err)
	}

	dstCmd := exec.CommandContext(ctx, "tar", "-xf", "-", "-C", dest, "--no-same-owner")
	dstCmd.Stdin = pipe
	var dstStderr bytes.Buffer
	dstCmd.Stderr = &dstStderr

	log.Debug("streaming tar from container", "container", container, "src", srcDir, "dest", dest)

	if err := srcCmd.Start(); err != nil {
		return fmt.Errorf("failed to start container tar: %w", err)
	}

	dstErr := dstCmd.Run()
	srcErr := srcCmd.Wait()
	if srcErr != nil || dstErr != nil {
		msg := strings.TrimSpace(srcStderr.String() + dstStderr.String())
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("tar stream failed from %s: %s", srcDir, msg)
	}
	return nil
}
