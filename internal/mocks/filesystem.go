// Package mocks provides mock implementations for testing.
package mocks

import (
	"os"
	"path"
	"time"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
// Paths are treated as slash-separated regardless of platform.
type MockFileSystem struct {
	// Files maps paths to file contents; a present key makes Stat succeed
	Files map[string][]byte
	// Stats maps paths to FileInfo for Stat
	Stats map[string]os.FileInfo
	// Canonicals maps paths to the value Canonical should return
	Canonicals map[string]string
	// Errors maps paths to errors (for simulating failures)
	Errors map[string]error
	// Cwd is returned by Getwd and used to absolutize relative paths
	Cwd string
	// GetwdErr is returned by Getwd when set
	GetwdErr error
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:      make(map[string][]byte),
		Stats:      make(map[string]os.FileInfo),
		Canonicals: make(map[string]string),
		Errors:     make(map[string]error),
		Cwd:        "/",
	}
}

// AddFile registers name with the given content.
func (m *MockFileSystem) AddFile(name, content string) {
	m.Files[name] = []byte(content)
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	// Check if we have file content (implies file exists)
	if content, ok := m.Files[name]; ok {
		return &mockFileInfo{name: path.Base(name), size: int64(len(content))}, nil
	}
	return nil, os.ErrNotExist
}

// Getwd returns Cwd.
func (m *MockFileSystem) Getwd() (string, error) {
	if m.GetwdErr != nil {
		return "", m.GetwdErr
	}
	return m.Cwd, nil
}

// Canonical returns the mapped value for name, or name made absolute
// against Cwd and cleaned.
func (m *MockFileSystem) Canonical(name string) (string, error) {
	if err, ok := m.Errors[name]; ok {
		return "", err
	}
	if canonical, ok := m.Canonicals[name]; ok {
		return canonical, nil
	}
	if !path.IsAbs(name) {
		name = path.Join(m.Cwd, name)
	}
	return path.Clean(name), nil
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
