package mocks

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// MockStrategy implements ports.BlameStrategy for testing.
// Parse treats each non-empty line as "revision author date" separated by spaces.
type MockStrategy struct {
	// Annotation is returned by Annotate
	Annotation ports.Annotation
	// ConnectCalls and AnnotateCalls count invocations
	ConnectCalls  int
	AnnotateCalls int
	// Files records the filenames passed to Annotate
	Files []string
	// Errors allows simulating errors for specific operations
	Errors struct {
		Connect  error
		Annotate error
		Parse    error
	}
}

// NewMockStrategy creates a strategy whose Annotate succeeds with no output.
func NewMockStrategy() *MockStrategy {
	return &MockStrategy{
		Annotation: ports.Annotation{CommandLine: "mock annotate"},
	}
}

// Name returns "mock".
func (m *MockStrategy) Name() string { return "mock" }

// Connect counts the call and returns Errors.Connect.
func (m *MockStrategy) Connect(ctx context.Context, repo ports.Repository, ws ports.Workspace) error {
	m.ConnectCalls++
	return m.Errors.Connect
}

// Annotate counts the call and returns Annotation and Errors.Annotate.
func (m *MockStrategy) Annotate(ctx context.Context, repo ports.Repository, ws ports.Workspace, filename string) (ports.Annotation, error) {
	m.AnnotateCalls++
	m.Files = append(m.Files, filename)
	return m.Annotation, m.Errors.Annotate
}

// Parse splits each line into revision, author and date.
func (m *MockStrategy) Parse(r io.Reader) ([]ports.BlameLine, error) {
	if m.Errors.Parse != nil {
		return nil, m.Errors.Parse
	}
	var lines []ports.BlameLine
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		lines = append(lines, ports.BlameLine{
			LineNumber: len(lines) + 1,
			Revision:   fields[0],
			Author:     fields[1],
			Date:       fields[2],
		})
	}
	return lines, scanner.Err()
}

// Compile-time check that MockStrategy implements ports.BlameStrategy.
var _ ports.BlameStrategy = (*MockStrategy)(nil)
