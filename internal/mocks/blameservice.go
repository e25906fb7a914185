package mocks

import (
	"context"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// MockBlameService implements ports.BlameService for testing.
type MockBlameService struct {
	// Results maps filenames to the result Blame returns
	Results map[string]*ports.BlameResult
	// Err is returned by every Blame call when set
	Err error
	// Requests records (dir, filename) pairs
	Requests [][2]string
}

// NewMockBlameService creates a new mock blame service.
func NewMockBlameService() *MockBlameService {
	return &MockBlameService{
		Results: make(map[string]*ports.BlameResult),
	}
}

// Blame returns the scripted result for filename.
func (m *MockBlameService) Blame(ctx context.Context, dir, filename string) (*ports.BlameResult, error) {
	m.Requests = append(m.Requests, [2]string{dir, filename})
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[filename]; ok {
		return r, nil
	}
	return &ports.BlameResult{Success: true}, nil
}

// Compile-time check that MockBlameService implements ports.BlameService.
var _ ports.BlameService = (*MockBlameService)(nil)
