// Package blame runs a blame request through a ports.BlameStrategy.
//
// The executor owns the error policy shared by every backend: bad input and
// connect or configuration failures are returned as errors, while an annotate
// command that could not be run is reported as a failed BlameResult so callers
// still get the command line and diagnostic text.
package blame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

// Executor runs blame requests with a single strategy.
// It holds no per-request state and may be shared.
type Executor struct {
	strategy ports.BlameStrategy
	logger   *log.Logger
}

// New creates an Executor. A nil logger discards output.
func New(strategy ports.BlameStrategy, logger *log.Logger) *Executor {
	return &Executor{strategy: strategy, logger: logging.OrDiscard(logger)}
}

// Strategy returns the backend in use.
func (e *Executor) Strategy() ports.BlameStrategy {
	return e.strategy
}

// Execute connects, annotates filename in ws and parses the output.
//
// Errors wrap scmerr.ErrInvalidArgument, scmerr.ErrAuthentication or
// scmerr.ErrConfiguration. When the annotate command cannot be run, the
// returned result has Success false and a nil error.
func (e *Executor) Execute(ctx context.Context, repo ports.Repository, ws ports.Workspace, filename string) (*ports.BlameResult, error) {
	e.logger.Info("attempting to display blame results", "file", filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: a single filename is required to execute the blame command", scmerr.ErrInvalidArgument)
	}

	if err := e.strategy.Connect(ctx, repo, ws); err != nil {
		return nil, err
	}

	ann, err := e.strategy.Annotate(ctx, repo, ws, filename)
	if err != nil {
		if errors.Is(err, scmerr.ErrExecution) {
			return &ports.BlameResult{
				Success:      false,
				CommandLine:  ann.CommandLine,
				ExitCode:     ann.Outcome.ExitCode,
				ErrorMessage: err.Error(),
			}, nil
		}
		return nil, err
	}

	return e.result(ann), nil
}

// result turns a finished annotate run into a BlameResult.
func (e *Executor) result(ann ports.Annotation) *ports.BlameResult {
	out := ann.Outcome
	res := &ports.BlameResult{
		Success:     out.ExitCode == 0,
		CommandLine: ann.CommandLine,
		ExitCode:    out.ExitCode,
	}

	lines, err := e.strategy.Parse(bytes.NewReader(out.Stdout))
	if err != nil {
		res.Success = false
		res.ErrorMessage = err.Error()
		return res
	}

	if !res.Success {
		res.ErrorMessage = exitMessage(out)
		e.logger.Warn("annotate exited with failure", "exit_code", out.ExitCode, "parsed_lines", len(lines))
		return res
	}

	res.Lines = lines
	e.logger.Debug("blame complete", "lines", len(lines))
	return res
}

func exitMessage(out ports.Outcome) string {
	msg := fmt.Sprintf("Exit Code: %d", out.ExitCode)
	if stderr := strings.TrimSpace(string(out.Stderr)); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}
