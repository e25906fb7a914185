package mocks

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/mcdonaldj/siblame/internal/ports"
)

func TestMockFileSystem(t *testing.T) {
	mockFS := NewMockFileSystem()

	// Test Stat for a registered file
	mockFS.AddFile("/ws/project.pj", "hello")
	info, err := mockFS.Stat("/ws/project.pj")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.Name() != "project.pj" {
		t.Errorf("info = (%q, %d), expected (project.pj, 5)", info.Name(), info.Size())
	}

	// Test Stat for non-existent file
	if _, err := mockFS.Stat("/nonexistent"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat should return ErrNotExist, got %v", err)
	}

	// Test error injection
	mockFS.Errors["/error/path"] = errors.New("injected error")
	if _, err := mockFS.Stat("/error/path"); err == nil || err.Error() != "injected error" {
		t.Errorf("Expected injected error, got: %v", err)
	}
}

func TestMockFileSystemGetwd(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Cwd = "/home/builder"

	wd, err := mockFS.Getwd()
	if err != nil || wd != "/home/builder" {
		t.Errorf("Getwd = (%q, %v)", wd, err)
	}

	mockFS.GetwdErr = errors.New("getwd: no such file or directory")
	if _, err := mockFS.Getwd(); err == nil {
		t.Error("Getwd should return GetwdErr")
	}
}

func TestMockFileSystemCanonical(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Cwd = "/ws"
	mockFS.Canonicals["/link"] = "/real/target"
	mockFS.Errors["/gone"] = os.ErrNotExist

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/link", "/real/target", false},
		{"/a/b/../c/", "/a/c", false},
		{"src", "/ws/src", false},
		{".", "/ws", false},
		{"/gone", "", true},
	}
	for _, tt := range tests {
		got, err := mockFS.Canonical(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Canonical(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMockEnvironment(t *testing.T) {
	env := NewMockEnvironment("WORKSPACE", "/jenkins/ws", "EMPTY", "", "DANGLING")

	if v, ok := env.LookupEnv("WORKSPACE"); !ok || v != "/jenkins/ws" {
		t.Errorf("LookupEnv(WORKSPACE) = (%q, %v)", v, ok)
	}
	if v, ok := env.LookupEnv("EMPTY"); !ok || v != "" {
		t.Errorf("empty values should count as set, got (%q, %v)", v, ok)
	}
	if _, ok := env.LookupEnv("DANGLING"); ok {
		t.Error("a key without a value should be ignored")
	}
	if _, ok := env.LookupEnv("MISSING"); ok {
		t.Error("unset variable reported as set")
	}
}

func TestMockCommandRunner(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.Outcomes["annotate"] = ports.Outcome{ExitCode: 0, Stdout: []byte("out")}
	runner.Errors["connect"] = errors.New("exec: \"si\": executable file not found in $PATH")

	ctx := context.Background()

	out, err := runner.Run(ctx, ports.Invocation{Name: "si", Args: []string{"annotate", "x"}})
	if err != nil || string(out.Stdout) != "out" {
		t.Errorf("annotate = (%+v, %v)", out, err)
	}

	out, err = runner.Run(ctx, ports.Invocation{Name: "si", Args: []string{"connect"}})
	if err == nil || out.ExitCode != -1 {
		t.Errorf("connect should fail to run, got (%+v, %v)", out, err)
	}

	// Unscripted commands succeed with no output
	out, err = runner.Run(ctx, ports.Invocation{Name: "si", Args: []string{"disconnect"}})
	if err != nil || out.ExitCode != 0 || len(out.Stdout) != 0 {
		t.Errorf("disconnect = (%+v, %v)", out, err)
	}

	// No args still records the call
	if _, err := runner.Run(ctx, ports.Invocation{Name: "si"}); err != nil {
		t.Errorf("bare invocation failed: %v", err)
	}

	if len(runner.Calls) != 4 {
		t.Errorf("Calls = %d, expected 4", len(runner.Calls))
	}
	if got := runner.CallsFor("annotate"); len(got) != 1 || got[0].Args[1] != "x" {
		t.Errorf("CallsFor(annotate) = %+v", got)
	}
}

func TestMockCommandRunnerCancelled(t *testing.T) {
	runner := NewMockCommandRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runner.Run(ctx, ports.Invocation{Name: "si", Args: []string{"annotate"}})
	if !errors.Is(err, context.Canceled) || out.ExitCode != -1 {
		t.Errorf("expected cancellation, got (%+v, %v)", out, err)
	}
}

func TestMockStrategy(t *testing.T) {
	s := NewMockStrategy()
	ctx := context.Background()

	if err := s.Connect(ctx, ports.Repository{}, ports.Workspace{}); err != nil {
		t.Errorf("Connect failed: %v", err)
	}
	ann, err := s.Annotate(ctx, ports.Repository{}, ports.Workspace{}, "a.c")
	if err != nil || ann.CommandLine != "mock annotate" {
		t.Errorf("Annotate = (%+v, %v)", ann, err)
	}
	if s.ConnectCalls != 1 || s.AnnotateCalls != 1 || len(s.Files) != 1 || s.Files[0] != "a.c" {
		t.Errorf("unexpected call record: %+v", s)
	}

	lines, err := s.Parse(strings.NewReader("1.1 jdoe 2021-03-03\n\nbroken line\n1.2 asmith 2021-04-01\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(lines) != 2 || lines[1].LineNumber != 2 || lines[1].Author != "asmith" {
		t.Errorf("lines = %+v", lines)
	}

	s.Errors.Connect = errors.New("connect")
	s.Errors.Parse = errors.New("parse")
	if err := s.Connect(ctx, ports.Repository{}, ports.Workspace{}); err == nil {
		t.Error("Connect should return Errors.Connect")
	}
	if _, err := s.Parse(strings.NewReader("")); err == nil {
		t.Error("Parse should return Errors.Parse")
	}
}

func TestMockBlameService(t *testing.T) {
	svc := NewMockBlameService()
	svc.Results["a.c"] = &ports.BlameResult{Success: true, Lines: []ports.BlameLine{{LineNumber: 1}}}

	ctx := context.Background()
	r, err := svc.Blame(ctx, "/ws", "a.c")
	if err != nil || len(r.Lines) != 1 {
		t.Errorf("Blame(a.c) = (%+v, %v)", r, err)
	}
	r, err = svc.Blame(ctx, "/ws", "other.c")
	if err != nil || !r.Success || len(r.Lines) != 0 {
		t.Errorf("unscripted file should succeed empty, got (%+v, %v)", r, err)
	}

	svc.Err = errors.New("boom")
	if _, err := svc.Blame(ctx, "/ws", "a.c"); err == nil {
		t.Error("Blame should return Err")
	}
	if len(svc.Requests) != 3 || svc.Requests[0] != [2]string{"/ws", "a.c"} {
		t.Errorf("Requests = %v", svc.Requests)
	}
}
