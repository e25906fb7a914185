// Package integrity implements blame for PTC Integrity (MKS) by driving the
// `si` command-line client, which has no library API for annotate.
//
// A blame is two runs of `si`: `connect` to establish a session, then
// `annotate` against either the local project.pj descriptor or an explicit
// --project path computed by projecturl.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/siblame/internal/cmdline"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/projecturl"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

const (
	// DefaultExecutable is the Integrity command-line client.
	DefaultExecutable = "si"

	// ProjectFile marks a directory as a sandbox of an Integrity project.
	ProjectFile = "project.pj"

	// annotateFields selects the columns Parse expects, in order.
	annotateFields = "--fields=date,revision,author"
)

// Strategy implements ports.BlameStrategy using the si client.
type Strategy struct {
	runner     ports.CommandRunner
	fs         ports.FileSystem
	resolver   *projecturl.Resolver
	executable string
	logger     *log.Logger
}

// Option is a functional option for configuring Strategy.
type Option func(*Strategy)

// WithExecutable sets a custom path to the si binary.
func WithExecutable(path string) Option {
	return func(s *Strategy) {
		s.executable = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Strategy) {
		s.logger = l
	}
}

// New creates a Strategy. resolver computes --project when no descriptor exists.
func New(runner ports.CommandRunner, fs ports.FileSystem, resolver *projecturl.Resolver, opts ...Option) *Strategy {
	s := &Strategy{
		runner:     runner,
		fs:         fs,
		resolver:   resolver,
		executable: DefaultExecutable,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// Name returns "integrity".
func (s *Strategy) Name() string { return "integrity" }

// Connect runs `si connect` in the workspace. Any failure is an *scmerr.AuthError
// whose text has the password masked.
func (s *Strategy) Connect(ctx context.Context, repo ports.Repository, ws ports.Workspace) error {
	inv := s.invocation(ws, "connect", repo)
	inv.Args = append(inv.Args, cmdline.PasswordFlag+repo.Password)
	redacted := cmdline.RedactedString(inv)

	s.logger.Debug("executing", "command", redacted)
	out, err := s.runner.Run(ctx, inv)
	if err != nil {
		err = scrubErr(err, repo.Password)
		s.logger.Error("command line connect failed", "err", err)
		return &scmerr.AuthError{
			ExitCode:    -1,
			CommandLine: redacted,
			Err:         err,
		}
	}
	if out.ExitCode != 0 {
		return &scmerr.AuthError{
			ExitCode:    out.ExitCode,
			Output:      cmdline.Scrub(out.Combined(), repo.Password),
			CommandLine: redacted,
		}
	}
	return nil
}

// Annotate runs `si annotate` for filename. When the workspace has no
// project.pj, the project is passed explicitly via --project.
// Failure to run the process wraps scmerr.ErrExecution; a nonzero exit does not.
func (s *Strategy) Annotate(ctx context.Context, repo ports.Repository, ws ports.Workspace, filename string) (ports.Annotation, error) {
	inv := s.invocation(ws, "annotate", repo)

	if !s.hasProjectFile(ws.BaseDir) {
		s.logger.Debug("project file doesn't exist", "dir", ws.BaseDir)
		project, err := s.resolver.Resolve(ws.BaseDir, repo.ConfigPath)
		if err != nil {
			return ports.Annotation{}, err
		}
		s.logger.Debug("computed project path", "project", project)
		inv.Args = append(inv.Args, "--project="+project)
	}
	inv.Args = append(inv.Args, annotateFields, `"`+filename+`"`)

	ann := ports.Annotation{CommandLine: cmdline.String(inv)}
	s.logger.Debug("executing", "command", ann.CommandLine)
	out, err := s.runner.Run(ctx, inv)
	ann.Outcome = out
	if err != nil {
		s.logger.Error("command line annotate failed", "err", err)
		return ann, fmt.Errorf("%w: %w", scmerr.ErrExecution, err)
	}
	return ann, nil
}

// invocation builds the arguments shared by connect and annotate.
func (s *Strategy) invocation(ws ports.Workspace, sub string, repo ports.Repository) ports.Invocation {
	return ports.Invocation{
		Name: s.executable,
		Dir:  ws.BaseDir,
		Args: []string{
			sub,
			"--hostname=" + repo.Host,
			"--port=" + strconv.Itoa(repo.Port),
			"--user=" + repo.User,
			"--batch",
		},
	}
}

// hasProjectFile reports whether project.pj exists directly inside dir.
func (s *Strategy) hasProjectFile(dir string) bool {
	_, err := s.fs.Stat(filepath.Join(dir, ProjectFile))
	return err == nil
}

// scrubErr masks password in err's message. err is returned as is when it
// does not mention the password, so callers can still match its chain.
func scrubErr(err error, password string) error {
	msg := err.Error()
	if scrubbed := cmdline.Scrub(msg, password); scrubbed != msg {
		return errors.New(scrubbed)
	}
	return err
}

// Compile-time check that Strategy implements ports.BlameStrategy.
var _ ports.BlameStrategy = (*Strategy)(nil)
