// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

import (
	"os"
)

// FileSystem abstracts filesystem operations for testability.
// Production code uses OSFileSystem adapter; tests use MockFileSystem.
type FileSystem interface {
	// Stat returns file info for the named file.
	Stat(name string) (os.FileInfo, error)

	// Getwd returns the current working directory of the process.
	Getwd() (string, error)

	// Canonical returns the absolute path of name with symlinks resolved.
	Canonical(name string) (string, error)
}
