// Package scmerr defines the error taxonomy shared by blame backends.
//
// Match with errors.Is. Authentication and configuration errors abort a
// blame request; execution errors are folded into a failed BlameResult by
// the executor instead of being returned.
package scmerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned for bad caller input, before any process runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAuthentication is returned when the session connect step fails.
	ErrAuthentication = errors.New("authentication failed")

	// ErrConfiguration is returned when the project location cannot be derived.
	ErrConfiguration = errors.New("configuration error")

	// ErrExecution is returned when the annotate process could not be run.
	ErrExecution = errors.New("execution failed")
)

// AuthError carries the details of a failed connect.
// CommandLine and Output must already be redacted when the error is built.
type AuthError struct {
	ExitCode    int    // -1 when the process never ran
	Output      string // Combined stdout and stderr
	CommandLine string
	Err         error // Underlying run error, if any
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("can't login: %v", e.Err)
	}
	return fmt.Sprintf("can't login: exit code %d: %s",
		e.ExitCode, strings.TrimSpace(e.Output))
}

// Unwrap lets errors.Is match both ErrAuthentication and the run error.
func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAuthentication, e.Err}
	}
	return []error{ErrAuthentication}
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgument):
		return 2
	case errors.Is(err, ErrAuthentication):
		return 3
	case errors.Is(err, ErrConfiguration):
		return 4
	default:
		return 1
	}
}
