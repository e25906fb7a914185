// Package logging builds the structured logger shared by siblame packages.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// DebugEnv enables debug logging when set to a non-empty value other than "0".
const DebugEnv = "SIBLAME_DEBUG"

// New returns a logger writing to w. Debug level is used when debug is true.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "siblame",
		ReportTimestamp: true,
	})
}

// FromEnv returns a stderr logger whose level honours DebugEnv.
func FromEnv() *log.Logger {
	v := os.Getenv(DebugEnv)
	return New(os.Stderr, v != "" && v != "0")
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
