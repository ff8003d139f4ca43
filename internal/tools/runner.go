package tools

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// CommandRunner abstracts external process execution for the stage binaries.
type CommandRunner interface {
	// Run captures stdout and stderr of one invocation.
	Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int32, error)
	// RunStreaming passes output through to the given writers as it is produced.
	RunStreaming(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), exitCode(err), err
}

func (r ExecRunner) RunStreaming(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int32, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}
	err := cmd.Run()
	return exitCode(err), err
}

func exitCode(err error) int32 {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return 127
	}
	return 1
}
