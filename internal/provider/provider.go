// Package provider selects the blame strategy for an SCM provider name.
package provider

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/siblame/internal/blame"
	"github.com/mcdonaldj/siblame/internal/gitblame"
	"github.com/mcdonaldj/siblame/internal/integrity"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/projecturl"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

// Provider names.
const (
	Integrity = "integrity"
	Git       = "git"
)

// aliases maps accepted spellings to canonical names.
var aliases = map[string]string{
	Integrity: Integrity,
	"si":      Integrity,
	Git:       Git,
}

// Deps carries what the strategies need. Runner, FS and Env are required.
type Deps struct {
	Runner     ports.CommandRunner
	FS         ports.FileSystem
	Env        ports.Environment
	Logger     *log.Logger
	Executable string // Client binary; empty uses the strategy default
	RootDir    string // Root directory override for project-URL resolution
}

// Names lists the canonical provider names.
func Names() []string {
	return []string{Integrity, Git}
}

// Canonical returns the canonical name for name, or false if unsupported.
func Canonical(name string) (string, bool) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// New builds an executor for the named provider.
func New(name string, deps Deps) (*blame.Executor, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q (supported: %s)",
			scmerr.ErrInvalidArgument, name, strings.Join(Names(), ", "))
	}
	if deps.Runner == nil || deps.FS == nil || deps.Env == nil {
		return nil, fmt.Errorf("%w: provider %s needs a runner, filesystem and environment",
			scmerr.ErrConfiguration, canonical)
	}
	logger := logging.OrDiscard(deps.Logger)

	var strategy ports.BlameStrategy
	switch canonical {
	case Integrity:
		resolverOpts := []projecturl.Option{projecturl.WithLogger(logger)}
		if deps.RootDir != "" {
			resolverOpts = append(resolverOpts, projecturl.WithOverride(deps.RootDir))
		}
		resolver := projecturl.New(deps.FS, deps.Env, resolverOpts...)

		opts := []integrity.Option{integrity.WithLogger(logger)}
		if deps.Executable != "" {
			opts = append(opts, integrity.WithExecutable(deps.Executable))
		}
		strategy = integrity.New(deps.Runner, deps.FS, resolver, opts...)
	case Git:
		opts := []gitblame.Option{gitblame.WithLogger(logger)}
		if deps.Executable != "" {
			opts = append(opts, gitblame.WithGitPath(deps.Executable))
		}
		strategy = gitblame.New(deps.Runner, opts...)
	}

	return blame.New(strategy, logger), nil
}
