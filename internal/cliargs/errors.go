package cliargs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every stage binary. Each one is fatal to the run.
var (
	ErrArgument        = errors.New("argument error")
	ErrToolUnavailable = errors.New("external tool unavailable")
	ErrCommandFailed   = errors.New("external command failed")
	ErrResourceStatus  = errors.New("resource reported error status")
	ErrTimeout         = errors.New("status polling timed out")
)

const (
	ExitOK         = 0
	ExitUnexpected = 1
	ExitFatal      = 2
)

// MissingError lists every required argument that was absent.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: missing required arguments: %s", ErrArgument, strings.Join(e.Names, ", "))
}

func (e *MissingError) Unwrap() error {
	return ErrArgument
}

// ExitCode maps a stage error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrArgument),
		errors.Is(err, ErrToolUnavailable),
		errors.Is(err, ErrCommandFailed),
		errors.Is(err, ErrResourceStatus),
		errors.Is(err, ErrTimeout):
		return ExitFatal
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Interrupted runs stop the pipeline like any other stage failure.
		return ExitFatal
	default:
		return ExitUnexpected
	}
}
