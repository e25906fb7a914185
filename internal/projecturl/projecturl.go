// Package projecturl derives the server-side project path for a working
// directory that has no local project.pj descriptor.
//
// The path is the repository's configured project path followed by the
// working directory's location relative to a root directory. The root comes,
// in order, from an explicit override, the CI workspace variable, or the
// process working directory.
package projecturl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

const (
	// RootDirEnv names the explicit root directory override.
	RootDirEnv = "sonar.scm.integrity.root.dir"

	// WorkspaceEnv names the build workspace root set by Jenkins and similar CI.
	WorkspaceEnv = "WORKSPACE"
)

// RootOptions lists the root directory sources in priority order.
// A nil pointer means the source is absent; an empty string is still present.
type RootOptions struct {
	Override  *string // Canonicalized before use
	Workspace *string // Used verbatim
	Cwd       string  // Fallback
}

// Resolver computes project paths.
type Resolver struct {
	fs       ports.FileSystem
	env      ports.Environment
	override *string
	logger   *log.Logger
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithOverride fixes the root directory override, taking the place of RootDirEnv.
func WithOverride(dir string) Option {
	return func(r *Resolver) {
		r.override = &dir
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver reading root directory sources from env.
func New(fs ports.FileSystem, env ports.Environment, opts ...Option) *Resolver {
	r := &Resolver{fs: fs, env: env}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	return r
}

// Options gathers the root directory sources for one call.
// The working directory is only read when neither variable is present.
func (r *Resolver) Options() (RootOptions, error) {
	var opts RootOptions
	if r.override != nil {
		dir := *r.override
		opts.Override = &dir
		return opts, nil
	}
	if v, ok := r.env.LookupEnv(RootDirEnv); ok {
		opts.Override = &v
		return opts, nil
	}
	if v, ok := r.env.LookupEnv(WorkspaceEnv); ok {
		opts.Workspace = &v
		return opts, nil
	}
	cwd, err := r.fs.Getwd()
	if err != nil {
		return opts, fmt.Errorf("%w: cannot get working directory: %w", scmerr.ErrConfiguration, err)
	}
	opts.Cwd = cwd
	return opts, nil
}

// RootDir picks the root directory from opts.
func (r *Resolver) RootDir(opts RootOptions) (string, error) {
	switch {
	case opts.Override != nil:
		r.logger.Debug("using root directory override", "value", *opts.Override)
		dir, err := r.fs.Canonical(*opts.Override)
		if err != nil {
			return "", fmt.Errorf("%w: cannot get canonical path for root directory: %w", scmerr.ErrConfiguration, err)
		}
		return dir, nil
	case opts.Workspace != nil:
		r.logger.Debug("using workspace directory", "value", *opts.Workspace)
		return *opts.Workspace, nil
	default:
		r.logger.Debug("no root directory provided, using working directory", "value", opts.Cwd)
		return opts.Cwd, nil
	}
}

// Resolve returns configPath joined with baseDir's path below the root directory.
func (r *Resolver) Resolve(baseDir, configPath string) (string, error) {
	opts, err := r.Options()
	if err != nil {
		return "", err
	}
	return r.ResolveWith(opts, baseDir, configPath)
}

// ResolveWith is Resolve with explicit root directory sources.
func (r *Resolver) ResolveWith(opts RootOptions, baseDir, configPath string) (string, error) {
	configPath = strings.TrimSuffix(configPath, "/")

	root, err := r.RootDir(opts)
	if err != nil {
		return "", err
	}
	base, err := r.fs.Canonical(baseDir)
	if err != nil {
		return "", fmt.Errorf("%w: cannot get canonical path for base directory: %w", scmerr.ErrConfiguration, err)
	}
	r.logger.Debug("resolving project path", "config_path", configPath, "base_dir", base, "root_dir", root)

	root = toSlash(root)
	base = toSlash(base)
	if !hasPrefixFold(base, root) {
		return "", fmt.Errorf("%w: root directory %q isn't correctly identified for %q",
			scmerr.ErrConfiguration, root, base)
	}

	rel := base[len(root):]
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	r.logger.Debug("project relative directory", "dir", rel)

	return configPath + rel, nil
}

// toSlash converts backslashes to forward slashes on every platform.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
