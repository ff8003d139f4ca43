package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/observability"
	"github.com/rs/zerolog"
)

// CommandError reports a wrapped tool that exited non-zero or could not start.
type CommandError struct {
	Command  string
	ExitCode int32
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("cmd call failed: %s (exit=%d)", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() []error {
	return []error{cliargs.ErrCommandFailed, e.Err}
}

// Invoker logs and runs external commands, turning non-zero exits into
// CommandError values. There are no retries and no per-call timeout.
type Invoker struct {
	runner  CommandRunner
	logger  zerolog.Logger
	metrics *observability.Recorder
	stdout  io.Writer
	stderr  io.Writer
}

func NewInvoker(runner CommandRunner, logger zerolog.Logger, metrics *observability.Recorder) *Invoker {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Invoker{
		runner:  runner,
		logger:  logger,
		metrics: metrics,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithOutput redirects streamed command output.
func (i *Invoker) WithOutput(stdout, stderr io.Writer) *Invoker {
	i.stdout = stdout
	i.stderr = stderr
	return i
}

func (i *Invoker) Logger() zerolog.Logger {
	return i.logger
}

// Call runs name with args and returns the captured stdout.
func (i *Invoker) Call(ctx context.Context, name string, args ...string) ([]byte, error) {
	line := CommandLine(name, args)
	i.logger.Info().Msgf("cmd call: %s", line)

	start := time.Now()
	stdout, stderr, exit, err := i.runner.Run(ctx, name, args...)
	if err == nil && exit != 0 {
		err = fmt.Errorf("exit status %d", exit)
	}
	i.metrics.RecordCommand(name, time.Since(start), err)
	if err != nil {
		i.logger.Error().Msgf("cmd call failed: %s", line)
		return stdout, &CommandError{
			Command:  line,
			ExitCode: exit,
			Stderr:   strings.TrimSpace(string(stderr)),
			Err:      err,
		}
	}
	return stdout, nil
}

// Stream runs name with args, passing its output through to the console.
func (i *Invoker) Stream(ctx context.Context, name string, args ...string) error {
	line := CommandLine(name, args)
	i.logger.Info().Msgf("cmd call: %s", line)

	start := time.Now()
	exit, err := i.runner.RunStreaming(ctx, name, args, i.stdout, i.stderr)
	if err == nil && exit != 0 {
		err = fmt.Errorf("exit status %d", exit)
	}
	i.metrics.RecordCommand(name, time.Since(start), err)
	if err != nil {
		i.logger.Error().Msgf("cmd call failed: %s", line)
		return &CommandError{Command: line, ExitCode: exit, Err: err}
	}
	return nil
}

// Preflight runs a version probe and reports ErrToolUnavailable when the
// tool cannot be called.
func Preflight(ctx context.Context, inv *Invoker, name string, args ...string) error {
	if _, err := inv.Call(ctx, name, args...); err != nil {
		return fmt.Errorf("%w: issue calling %s: %v", cliargs.ErrToolUnavailable, name, err)
	}
	return nil
}
