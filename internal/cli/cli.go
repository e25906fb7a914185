// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/mcdonaldj/siblame/internal/adapters/execrunner"
	"github.com/mcdonaldj/siblame/internal/adapters/osenv"
	"github.com/mcdonaldj/siblame/internal/adapters/osfs"
	"github.com/mcdonaldj/siblame/internal/blame"
	"github.com/mcdonaldj/siblame/internal/config"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/projecturl"
	"github.com/mcdonaldj/siblame/internal/provider"
	"github.com/mcdonaldj/siblame/internal/scmerr"
	"github.com/mcdonaldj/siblame/internal/tui"
	"github.com/spf13/pflag"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() (string, error)
	DefaultConfig() (*config.Config, error)
}

// ViewerService runs the interactive blame viewer.
type ViewerService interface {
	View(ctx context.Context, svc ports.BlameService, dir, filename string) error
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	ViewerSvc ViewerService
	Runner    ports.CommandRunner
	FS        ports.FileSystem
	Env       ports.Environment
	Logger    *log.Logger

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) {},
		Logger:  logging.Discard(),
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error)          { return config.Load() }
func (d *defaultConfigService) Save(cfg *config.Config) error          { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() (string, error)            { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() (*config.Config, error) { return config.DefaultConfig() }

// defaultViewerService wraps tui.Run.
type defaultViewerService struct{}

func (d *defaultViewerService) View(ctx context.Context, svc ports.BlameService, dir, filename string) error {
	return tui.Run(ctx, svc, dir, filename)
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) viewerSvc() ViewerService {
	if c.ViewerSvc != nil {
		return c.ViewerSvc
	}
	return &defaultViewerService{}
}

func (c *CLI) fs() ports.FileSystem {
	if c.FS != nil {
		return c.FS
	}
	return osfs.New()
}

func (c *CLI) env() ports.Environment {
	if c.Env != nil {
		return c.Env
	}
	return osenv.New()
}

func (c *CLI) runner(cfg *config.Config) (ports.CommandRunner, error) {
	if c.Runner != nil {
		return c.Runner, nil
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return execrunner.New(execrunner.WithTimeout(timeout)), nil
}

func (c *CLI) logger(debug bool) *log.Logger {
	l := c.Logger
	if l == nil {
		l = logging.FromEnv()
	}
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		fmt.Fprintln(c.Out, "No command specified. Use 'siblame help' for usage.")
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch c.Args[1] {
	case "blame":
		c.RunBlame(ctx)
	case "view":
		c.RunView(ctx)
	case "project-url":
		c.ProjectURL()
	case "init":
		c.InitConfig()
	case "status":
		c.ShowStatus()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "siblame v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.Args[1])
		c.PrintUsage()
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `siblame - Per-line blame through the SCM command-line client

Usage:
  siblame blame <file> [--dir=D] [--json] [--provider=P] [--debug]
                                      Print revision, author and date for every line
  siblame view <file> [--dir=D] [--provider=P]
                                      Browse the blame interactively
  siblame project-url [dir]           Print the server-side project path for dir
  siblame status                      Show effective configuration
  siblame init                        Create default config file
  siblame version, -v                 Show version
  siblame help, -h                    Show this help

Providers: integrity (si), git
Config: ~/.siblame/config.yaml
Environment:
  SI_PASSWORD (or password_env)       Password for the Integrity server
  sonar.scm.integrity.root.dir        Root directory override
  WORKSPACE                           CI workspace root
  SIBLAME_DEBUG=1                     Debug logging`)
}

// blameFlags are shared by blame and view.
type blameFlags struct {
	dir      string
	provider string
	json     bool
	debug    bool
}

// parseBlameFlags parses args after the command name and returns the file.
func (c *CLI) parseBlameFlags(name string, withJSON bool) (*blameFlags, string, bool) {
	var f blameFlags
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.Err)
	fs.StringVarP(&f.dir, "dir", "d", "", "Workspace directory (default: current directory)")
	fs.StringVarP(&f.provider, "provider", "p", "", "SCM provider (default: from config)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	if withJSON {
		fs.BoolVar(&f.json, "json", false, "Print the result as JSON")
	}

	if err := fs.Parse(c.Args[2:]); err != nil {
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return nil, "", false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.Out, "Usage: siblame %s <file> [flags]\n", name)
		fs.PrintDefaults()
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return nil, "", false
	}
	return &f, fs.Arg(0), true
}

// session holds what one blame command needs.
type session struct {
	executor *blame.Executor
	repo     ports.Repository
	dir      string
}

// newSession loads config and builds the executor for the selected provider.
func (c *CLI) newSession(f *blameFlags) (*session, bool) {
	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
		return nil, false
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}

	name, ok := provider.Canonical(cfg.Provider)
	if !ok {
		fmt.Fprintf(c.Err, "Error: unknown provider %q (supported: integrity, git)\n", cfg.Provider)
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return nil, false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(c.Err, "Invalid config: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
		return nil, false
	}

	dir := f.dir
	if dir == "" {
		if dir, err = c.fs().Getwd(); err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
			return nil, false
		}
	} else if dir, err = config.ExpandPath(dir); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return nil, false
	}

	runner, err := c.runner(cfg)
	if err != nil {
		fmt.Fprintf(c.Err, "Invalid config: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
		return nil, false
	}

	deps := provider.Deps{
		Runner: runner,
		FS:     c.fs(),
		Env:    c.env(),
		Logger: c.logger(f.debug),
	}
	if name == provider.Integrity {
		deps.Executable = cfg.Executable
		deps.RootDir = cfg.RootDir
	}
	executor, err := provider.New(name, deps)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(scmerr.ExitCode(err))
		return nil, false
	}

	return &session{executor: executor, repo: cfg.Repository(deps.Env), dir: dir}, true
}

// RunBlame runs the blame command.
func (c *CLI) RunBlame(ctx context.Context) {
	f, file, ok := c.parseBlameFlags("blame", true)
	if !ok {
		return
	}
	s, ok := c.newSession(f)
	if !ok {
		return
	}

	result, err := s.executor.Execute(ctx, s.repo, ports.Workspace{BaseDir: s.dir}, file)
	if err != nil {
		fmt.Fprintf(c.Err, "%s %v\n", c.red("Error:"), err)
		c.Exit(scmerr.ExitCode(err))
		return
	}

	if f.json {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(1)
			return
		}
	} else if result.Success {
		c.printLines(result.Lines)
	}

	if !result.Success {
		c.printFailure(result)
		c.Exit(1)
	}
}

func (c *CLI) printLines(lines []ports.BlameLine) {
	if len(lines) == 0 {
		fmt.Fprintln(c.Out, c.gray("No lines"))
		return
	}
	fmt.Fprintln(c.Out, c.cyan(fmt.Sprintf("%6s  %-12s %-20s %s", "LINE", "REVISION", "AUTHOR", "DATE")))
	for _, l := range lines {
		fmt.Fprintf(c.Out, "%6d  %s %s %s\n",
			l.LineNumber,
			c.yellow(fmt.Sprintf("%-12s", l.Revision)),
			c.green(fmt.Sprintf("%-20s", l.Author)),
			c.gray(l.Date))
	}
}

func (c *CLI) printFailure(result *ports.BlameResult) {
	fmt.Fprintf(c.Err, "%s blame failed\n", c.red("x"))
	fmt.Fprintf(c.Err, "  Command:   %s\n", result.CommandLine)
	fmt.Fprintf(c.Err, "  Exit code: %d\n", result.ExitCode)
	if result.ErrorMessage != "" {
		fmt.Fprintf(c.Err, "  Message:   %s\n", result.ErrorMessage)
	}
}

// RunView opens the interactive viewer.
func (c *CLI) RunView(ctx context.Context) {
	f, file, ok := c.parseBlameFlags("view", false)
	if !ok {
		return
	}
	s, ok := c.newSession(f)
	if !ok {
		return
	}

	svc := blame.NewService(s.executor, s.repo)
	if err := c.viewerSvc().View(ctx, svc, s.dir, file); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(scmerr.ExitCode(err))
	}
}

// ProjectURL prints the project path computed for a directory.
func (c *CLI) ProjectURL() {
	fs := pflag.NewFlagSet("project-url", pflag.ContinueOnError)
	fs.SetOutput(c.Err)
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(c.Args[2:]); err != nil {
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(c.Out, "Usage: siblame project-url [dir]")
		c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
		return
	}

	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
		return
	}

	dir := "."
	if fs.NArg() == 1 {
		if dir, err = config.ExpandPath(fs.Arg(0)); err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(scmerr.ExitCode(scmerr.ErrInvalidArgument))
			return
		}
	}

	opts := []projecturl.Option{projecturl.WithLogger(c.logger(*debug))}
	if cfg.RootDir != "" {
		opts = append(opts, projecturl.WithOverride(cfg.RootDir))
	}
	resolver := projecturl.New(c.fs(), c.env(), opts...)

	project, err := resolver.Resolve(dir, cfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(scmerr.ExitCode(err))
		return
	}
	fmt.Fprintln(c.Out, project)
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	cfg, err := svc.DefaultConfig()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	if err := svc.Save(cfg); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	path, err := svc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", path)
}

// ShowStatus shows the effective configuration.
func (c *CLI) ShowStatus() {
	cfgSvc := c.configSvc()

	cfg, err := cfgSvc.Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(scmerr.ExitCode(scmerr.ErrConfiguration))
		return
	}

	configPath, err := cfgSvc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintln(c.Out, "siblame status:")
	fmt.Fprintf(c.Out, "  Provider:    %s\n", cfg.Provider)
	fmt.Fprintf(c.Out, "  Server:      %s\n", c.orNone(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.Host == ""))
	fmt.Fprintf(c.Out, "  User:        %s\n", c.orNone(cfg.User, cfg.User == ""))
	fmt.Fprintf(c.Out, "  Password:    %s\n", c.passwordState(cfg.PasswordEnv))
	fmt.Fprintf(c.Out, "  Project:     %s\n", c.orNone(cfg.ConfigPath, cfg.ConfigPath == ""))
	fmt.Fprintf(c.Out, "  Executable:  %s\n", cfg.Executable)
	fmt.Fprintf(c.Out, "  Timeout:     %s\n", c.orNone(cfg.Timeout, cfg.Timeout == ""))
	fmt.Fprintf(c.Out, "  Root dir:    %s\n", c.rootDirState(cfg))
	fmt.Fprintf(c.Out, "  Config:      %s\n", configPath)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(c.Out, "  Validation:  %s\n", c.red(err.Error()))
	} else {
		fmt.Fprintf(c.Out, "  Validation:  %s\n", c.green("ok"))
	}
}

func (c *CLI) orNone(s string, none bool) string {
	if none {
		return c.gray("(none)")
	}
	return s
}

// passwordState reports whether the password variable is set, never its value.
func (c *CLI) passwordState(name string) string {
	if name == "" {
		return c.gray("(no password_env)")
	}
	if v, ok := c.env().LookupEnv(name); ok && v != "" {
		return fmt.Sprintf("%s %s", c.green("set"), c.gray("($"+name+")"))
	}
	return fmt.Sprintf("%s %s", c.yellow("unset"), c.gray("($"+name+")"))
}

func (c *CLI) rootDirState(cfg *config.Config) string {
	if cfg.RootDir != "" {
		return fmt.Sprintf("%s %s", cfg.RootDir, c.gray("(config)"))
	}
	env := c.env()
	if v, ok := env.LookupEnv(projecturl.RootDirEnv); ok {
		return fmt.Sprintf("%s %s", v, c.gray("("+projecturl.RootDirEnv+")"))
	}
	if v, ok := env.LookupEnv(projecturl.WorkspaceEnv); ok {
		return fmt.Sprintf("%s %s", v, c.gray("("+projecturl.WorkspaceEnv+")"))
	}
	return c.gray("(working directory)")
}

