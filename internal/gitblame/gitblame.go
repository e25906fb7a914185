// Package gitblame implements blame for git working trees with
// `git blame --line-porcelain`.
package gitblame

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/siblame/internal/cmdline"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

// Strategy implements ports.BlameStrategy using the git binary.
type Strategy struct {
	runner  ports.CommandRunner
	gitPath string
	logger  *log.Logger
}

// Option is a functional option for configuring Strategy.
type Option func(*Strategy)

// WithGitPath sets a custom path to the git binary.
func WithGitPath(path string) Option {
	return func(s *Strategy) {
		s.gitPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Strategy) {
		s.logger = l
	}
}

// New creates a git Strategy.
func New(runner ports.CommandRunner, opts ...Option) *Strategy {
	s := &Strategy{runner: runner, gitPath: "git"}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// Name returns "git".
func (s *Strategy) Name() string { return "git" }

// Connect is a no-op; git needs no session.
func (s *Strategy) Connect(ctx context.Context, repo ports.Repository, ws ports.Workspace) error {
	return nil
}

// Annotate runs `git blame --line-porcelain -- filename` in the workspace.
func (s *Strategy) Annotate(ctx context.Context, repo ports.Repository, ws ports.Workspace, filename string) (ports.Annotation, error) {
	inv := ports.Invocation{
		Name: s.gitPath,
		Args: []string{"blame", "--line-porcelain", "--", filename},
		Dir:  ws.BaseDir,
	}
	ann := ports.Annotation{CommandLine: cmdline.String(inv)}
	s.logger.Debug("executing", "command", ann.CommandLine)

	out, err := s.runner.Run(ctx, inv)
	ann.Outcome = out
	if err != nil {
		return ann, fmt.Errorf("%w: %w", scmerr.ErrExecution, err)
	}
	return ann, nil
}

// Parse reads --line-porcelain output. Every line of the file is preceded by
// a full header, and the content line itself starts with a tab.
func (s *Strategy) Parse(r io.Reader) ([]ports.BlameLine, error) {
	var (
		lines   []ports.BlameLine
		cur     ports.BlameLine
		unix    int64
		tz      string
		inEntry bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		switch {
		case strings.HasPrefix(text, "\t"):
			if !inEntry {
				continue
			}
			cur.LineNumber = len(lines) + 1
			if unix != 0 {
				cur.Time = time.Unix(unix, 0).In(zone(tz))
				cur.Date = cur.Time.Format(time.RFC3339)
			}
			lines = append(lines, cur)
			cur, unix, tz, inEntry = ports.BlameLine{}, 0, "", false
		case !inEntry:
			fields := strings.Fields(text)
			if len(fields) >= 3 && isHash(fields[0]) {
				cur.Revision = fields[0]
				inEntry = true
			}
		case strings.HasPrefix(text, "author "):
			cur.Author = strings.TrimPrefix(text, "author ")
		case strings.HasPrefix(text, "author-time "):
			v, err := strconv.ParseInt(strings.TrimPrefix(text, "author-time "), 10, 64)
			if err != nil {
				s.logger.Warn("bad author-time", "line", text)
				continue
			}
			unix = v
		case strings.HasPrefix(text, "author-tz "):
			tz = strings.TrimPrefix(text, "author-tz ")
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("reading blame output: %w", err)
	}
	return lines, nil
}

func isHash(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

// zone converts a "+hhmm" offset to a fixed location. Unparseable offsets are UTC.
func zone(tz string) *time.Location {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return time.UTC
	}
	h, err1 := strconv.Atoi(tz[1:3])
	m, err2 := strconv.Atoi(tz[3:5])
	if err1 != nil || err2 != nil {
		return time.UTC
	}
	offset := h*3600 + m*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset)
}

// Compile-time check that Strategy implements ports.BlameStrategy.
var _ ports.BlameStrategy = (*Strategy)(nil)
