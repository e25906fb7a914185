package ports

import (
	"context"
	"io"
	"time"
)

// Repository holds the connection details of a VCS server.
type Repository struct {
	Host       string
	Port       int
	User       string
	Password   string
	ConfigPath string // Server-side project config path; empty when unset
}

// Workspace is the local directory a blame runs in.
type Workspace struct {
	BaseDir string
}

// BlameLine attributes one line of a file.
type BlameLine struct {
	LineNumber int       `json:"line"`
	Revision   string    `json:"revision"`
	Author     string    `json:"author"`
	Date       string    `json:"date"`          // As printed by the VCS client
	Time       time.Time `json:"time,omitzero"` // Parsed Date; zero when unparseable
}

// BlameResult is the outcome of a blame request that got as far as running
// the annotate command.
// Lines is always empty when Success is false.
type BlameResult struct {
	Lines        []BlameLine `json:"lines"`
	Success      bool        `json:"success"`
	CommandLine  string      `json:"command_line"`
	ExitCode     int         `json:"exit_code"`
	ErrorMessage string      `json:"error,omitempty"`
}

// Annotation is the raw result of an annotate run.
type Annotation struct {
	CommandLine string
	Outcome     Outcome
}

// BlameStrategy is one VCS backend's way of producing blame.
// Production code uses integrity.Strategy or gitblame.Strategy; tests use MockStrategy.
type BlameStrategy interface {
	// Name identifies the backend, e.g. "integrity".
	Name() string

	// Connect establishes whatever session the backend needs before Annotate.
	Connect(ctx context.Context, repo Repository, ws Workspace) error

	// Annotate runs the backend's blame command for filename.
	// Errors wrapping scmerr.ErrExecution mean the command could not be run.
	Annotate(ctx context.Context, repo Repository, ws Workspace, filename string) (Annotation, error)

	// Parse turns annotate stdout into ordered blame lines.
	Parse(r io.Reader) ([]BlameLine, error)
}

// BlameService runs blame for a file in a directory.
// The viewer and CLI depend on this rather than on an executor directly.
type BlameService interface {
	Blame(ctx context.Context, dir, filename string) (*BlameResult, error)
}
