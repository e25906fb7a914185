package mocks

import (
	"context"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// MockCommandRunner implements ports.CommandRunner for testing.
// Responses are keyed by the first argument (the sub-command), e.g. "connect".
type MockCommandRunner struct {
	// Calls records every invocation in order
	Calls []ports.Invocation
	// Outcomes maps a sub-command to the outcome it returns
	Outcomes map[string]ports.Outcome
	// Errors maps a sub-command to a run error (process could not be run)
	Errors map[string]error
}

// NewMockCommandRunner creates a runner where every command exits 0 with no output.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Outcomes: make(map[string]ports.Outcome),
		Errors:   make(map[string]error),
	}
}

// Run records inv and returns the scripted outcome for its sub-command.
func (m *MockCommandRunner) Run(ctx context.Context, inv ports.Invocation) (ports.Outcome, error) {
	m.Calls = append(m.Calls, inv)
	sub := subcommand(inv)
	if err, ok := m.Errors[sub]; ok {
		return ports.Outcome{ExitCode: -1}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.Outcome{ExitCode: -1}, err
	}
	return m.Outcomes[sub], nil
}

// CallsFor returns the recorded invocations of one sub-command.
func (m *MockCommandRunner) CallsFor(sub string) []ports.Invocation {
	var calls []ports.Invocation
	for _, inv := range m.Calls {
		if subcommand(inv) == sub {
			calls = append(calls, inv)
		}
	}
	return calls
}

func subcommand(inv ports.Invocation) string {
	if len(inv.Args) == 0 {
		return ""
	}
	return inv.Args[0]
}

// Compile-time check that MockCommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*MockCommandRunner)(nil)
