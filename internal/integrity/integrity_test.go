package integrity

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mcdonaldj/siblame/internal/logging"
	"github.com/mcdonaldj/siblame/internal/mocks"
	"github.com/mcdonaldj/siblame/internal/ports"
	"github.com/mcdonaldj/siblame/internal/projecturl"
	"github.com/mcdonaldj/siblame/internal/scmerr"
)

var testRepo = ports.Repository{
	Host:       "integrity.example.com",
	Port:       7001,
	User:       "builder",
	Password:   `p@ss "w0rd" --x`,
	ConfigPath: "#/Projects/Core/",
}

type fixture struct {
	runner *mocks.MockCommandRunner
	fs     *mocks.MockFileSystem
	env    *mocks.MockEnvironment
	logs   *bytes.Buffer
	s      *Strategy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		runner: mocks.NewMockCommandRunner(),
		fs:     mocks.NewMockFileSystem(),
		env:    mocks.NewMockEnvironment(projecturl.WorkspaceEnv, "/ws"),
		logs:   &bytes.Buffer{},
	}
	logger := logging.New(f.logs, true)
	resolver := projecturl.New(f.fs, f.env, projecturl.WithLogger(logger))
	f.s = New(f.runner, f.fs, resolver, WithLogger(logger))
	return f
}

func TestNew(t *testing.T) {
	t.Run("default executable", func(t *testing.T) {
		s := New(nil, nil, nil)
		if s.executable != "si" {
			t.Errorf("expected default executable 'si', got %q", s.executable)
		}
		if s.Name() != "integrity" {
			t.Errorf("Name() = %q, expected %q", s.Name(), "integrity")
		}
	})

	t.Run("custom executable", func(t *testing.T) {
		s := New(nil, nil, nil, WithExecutable("/opt/mks/bin/si"))
		if s.executable != "/opt/mks/bin/si" {
			t.Errorf("expected custom executable, got %q", s.executable)
		}
	})
}

func TestConnect(t *testing.T) {
	f := newFixture(t)
	ws := ports.Workspace{BaseDir: "/ws/module"}

	if err := f.s.Connect(context.Background(), testRepo, ws); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	calls := f.runner.CallsFor("connect")
	if len(calls) != 1 {
		t.Fatalf("expected 1 connect call, got %d", len(calls))
	}
	want := ports.Invocation{
		Name: "si",
		Dir:  "/ws/module",
		Args: []string{
			"connect",
			"--hostname=integrity.example.com",
			"--port=7001",
			"--user=builder",
			"--batch",
			"--password=" + testRepo.Password,
		},
	}
	if diff := cmp.Diff(want, calls[0]); diff != "" {
		t.Errorf("connect invocation mismatch (-want +got):\n%s", diff)
	}

	if strings.Contains(f.logs.String(), testRepo.Password) {
		t.Errorf("debug log leaks password: %s", f.logs.String())
	}
	if !strings.Contains(f.logs.String(), "--password=********") {
		t.Errorf("debug log should show the masked flag: %s", f.logs.String())
	}
}

func TestConnectNonZeroExit(t *testing.T) {
	f := newFixture(t)
	f.runner.Outcomes["connect"] = ports.Outcome{
		ExitCode: 128,
		Stdout:   []byte("Connecting as builder with password " + testRepo.Password + "\n"),
		Stderr:   []byte("MKS125210: invalid credentials\n"),
	}

	err := f.s.Connect(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws"})
	if !errors.Is(err, scmerr.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}

	var authErr *scmerr.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *scmerr.AuthError, got %T", err)
	}
	if authErr.ExitCode != 128 {
		t.Errorf("ExitCode = %d, expected 128", authErr.ExitCode)
	}
	if !strings.Contains(authErr.Output, "invalid credentials") {
		t.Errorf("Output should carry captured output, got %q", authErr.Output)
	}

	for name, text := range map[string]string{
		"message":      err.Error(),
		"output":       authErr.Output,
		"command line": authErr.CommandLine,
		"log":          f.logs.String(),
	} {
		if strings.Contains(text, testRepo.Password) {
			t.Errorf("%s leaks password: %q", name, text)
		}
	}
}

func TestConnectRunError(t *testing.T) {
	f := newFixture(t)
	f.runner.Errors["connect"] = &exec.Error{Name: "si", Err: exec.ErrNotFound}

	err := f.s.Connect(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws"})
	if !errors.Is(err, scmerr.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound in chain, got %v", err)
	}
	var authErr *scmerr.AuthError
	if errors.As(err, &authErr) && authErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, expected -1", authErr.ExitCode)
	}
}

func TestConnectRunErrorMentioningPassword(t *testing.T) {
	f := newFixture(t)
	f.runner.Errors["connect"] = errors.New("spawn si --password=" + testRepo.Password + ": resource busy")

	err := f.s.Connect(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws"})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), testRepo.Password) {
		t.Errorf("error leaks password: %q", err.Error())
	}
	if strings.Contains(f.logs.String(), testRepo.Password) {
		t.Errorf("log leaks password: %q", f.logs.String())
	}
}

func TestAnnotateWithProjectFile(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/ws/module/project.pj", "#!si")

	ann, err := f.s.Annotate(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws/module"}, "Main.java")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	calls := f.runner.CallsFor("annotate")
	if len(calls) != 1 {
		t.Fatalf("expected 1 annotate call, got %d", len(calls))
	}
	want := []string{
		"annotate",
		"--hostname=integrity.example.com",
		"--port=7001",
		"--user=builder",
		"--batch",
		"--fields=date,revision,author",
		`"Main.java"`,
	}
	if diff := cmp.Diff(want, calls[0].Args); diff != "" {
		t.Errorf("annotate args mismatch (-want +got):\n%s", diff)
	}
	if calls[0].Dir != "/ws/module" {
		t.Errorf("Dir = %q, expected %q", calls[0].Dir, "/ws/module")
	}
	if ann.CommandLine != `si annotate --hostname=integrity.example.com --port=7001 --user=builder --batch --fields=date,revision,author "Main.java"` {
		t.Errorf("unexpected command line: %s", ann.CommandLine)
	}
}

func TestAnnotateWithoutProjectFile(t *testing.T) {
	f := newFixture(t)
	ws := ports.Workspace{BaseDir: "/ws/sub/dir"}

	if _, err := f.s.Annotate(context.Background(), testRepo, ws, "my file.c"); err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	resolver := projecturl.New(f.fs, f.env)
	expected, err := resolver.Resolve(ws.BaseDir, testRepo.ConfigPath)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if expected != "#/Projects/Core/sub/dir" {
		t.Fatalf("resolver returned %q", expected)
	}

	args := f.runner.CallsFor("annotate")[0].Args
	var projectArgs []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--project=") {
			projectArgs = append(projectArgs, arg)
		}
	}
	if diff := cmp.Diff([]string{"--project=" + expected}, projectArgs); diff != "" {
		t.Errorf("--project args mismatch (-want +got):\n%s", diff)
	}
	if args[len(args)-1] != `"my file.c"` {
		t.Errorf("filename should be quoted verbatim, got %q", args[len(args)-1])
	}
	if args[len(args)-2] != "--fields=date,revision,author" {
		t.Errorf("fields argument should precede filename, got %q", args[len(args)-2])
	}
}

func TestAnnotateResolverFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.s.Annotate(context.Background(), testRepo, ports.Workspace{BaseDir: "/elsewhere"}, "a.c")
	if !errors.Is(err, scmerr.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if errors.Is(err, scmerr.ErrExecution) {
		t.Error("configuration failure must not look like an execution failure")
	}
	if len(f.runner.Calls) != 0 {
		t.Errorf("no process should run, got %d calls", len(f.runner.Calls))
	}
}

func TestAnnotateRunError(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/ws/project.pj", "")
	f.runner.Errors["annotate"] = &exec.Error{Name: "si", Err: exec.ErrNotFound}

	ann, err := f.s.Annotate(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws"}, "a.c")
	if !errors.Is(err, scmerr.ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound in chain, got %v", err)
	}
	if ann.CommandLine == "" {
		t.Error("command line should be reported even when the run fails")
	}
}

func TestAnnotateNonZeroExitIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/ws/project.pj", "")
	f.runner.Outcomes["annotate"] = ports.Outcome{ExitCode: 1, Stderr: []byte("no such member")}

	ann, err := f.s.Annotate(context.Background(), testRepo, ports.Workspace{BaseDir: "/ws"}, "a.c")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if ann.Outcome.ExitCode != 1 {
		t.Errorf("ExitCode = %d, expected 1", ann.Outcome.ExitCode)
	}
}

func TestImplementsInterface(t *testing.T) {
	var _ ports.BlameStrategy = (*Strategy)(nil)
}
