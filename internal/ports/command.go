package ports

import "context"

// Invocation describes a single external process run.
// A new Invocation is built for every run and never reused.
type Invocation struct {
	Name string   // Executable name or path
	Args []string // Arguments, not including Name
	Dir  string   // Working directory
}

// Outcome is what a finished process produced.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Combined returns stdout followed by stderr.
func (o Outcome) Combined() string {
	return string(o.Stdout) + string(o.Stderr)
}

// CommandRunner abstracts running external processes for testability.
// Production code uses ExecRunner adapter; tests use MockCommandRunner.
type CommandRunner interface {
	// Run executes inv and blocks until the process exits.
	// A nonzero exit status is reported in Outcome.ExitCode with a nil error.
	// An error is returned only when the process could not be run at all
	// (binary missing, I/O failure, context cancelled).
	Run(ctx context.Context, inv Invocation) (Outcome, error)
}
