package mocks

import "github.com/mcdonaldj/siblame/internal/ports"

// MockEnvironment implements ports.Environment for testing.
type MockEnvironment struct {
	// Vars holds the variables that are set. Empty values count as set.
	Vars map[string]string
}

// NewMockEnvironment creates an environment with the given key/value pairs.
func NewMockEnvironment(kv ...string) *MockEnvironment {
	m := &MockEnvironment{Vars: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Vars[kv[i]] = kv[i+1]
	}
	return m
}

// LookupEnv returns the value of key and whether it is set.
func (m *MockEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := m.Vars[key]
	return v, ok
}

// Compile-time check that MockEnvironment implements ports.Environment.
var _ ports.Environment = (*MockEnvironment)(nil)
