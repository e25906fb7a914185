// Package execrunner provides a command runner adapter using exec.CommandContext.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// waitDelay bounds how long Run waits for output pipes after a kill, in case
// the process left children holding them open.
const waitDelay = 2 * time.Second

// ExecRunner implements ports.CommandRunner using exec.CommandContext.
type ExecRunner struct {
	// timeout bounds each run. Zero means no limit.
	timeout time.Duration
}

// Option is a functional option for configuring ExecRunner.
type Option func(*ExecRunner)

// WithTimeout kills processes that run longer than d.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		r.timeout = d
	}
}

// New creates a new ExecRunner adapter.
func New(opts ...Option) *ExecRunner {
	r := &ExecRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, inv ports.Invocation) (ports.Outcome, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := r.command(ctx, inv)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := ports.Outcome{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return out, nil
	}

	// A killed process also yields an ExitError; report the cancellation instead.
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("%s: %w", inv.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	out.ExitCode = -1
	return out, fmt.Errorf("%s: %w", inv.Name, err)
}

// command creates an exec.Cmd for inv.
func (r *ExecRunner) command(ctx context.Context, inv ports.Invocation) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay
	return cmd
}

// Compile-time check that ExecRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*ExecRunner)(nil)
