// Package osenv provides an environment adapter using the os package.
package osenv

import (
	"os"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// OSEnvironment implements ports.Environment using os.LookupEnv.
type OSEnvironment struct{}

// New creates a new OSEnvironment adapter.
func New() *OSEnvironment {
	return &OSEnvironment{}
}

// LookupEnv returns the value of key and whether it is set.
func (e *OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Compile-time check that OSEnvironment implements ports.Environment.
var _ ports.Environment = (*OSEnvironment)(nil)
