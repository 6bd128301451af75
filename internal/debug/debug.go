// Package debug provides a lightweight, verbosity-gated logger shared by
// fae's actors. Unlike the teacher's global build-flag-driven debug package,
// fae's configuration is constructor-parameters-only (spec.md §6), so
// verbosity is a per-Logger setting rather than a process-global toggle.
package debug

import (
	"fmt"
	"log"
	"os"
)

// Logger wraps the standard library logger with a verbosity gate. DEBUG-level
// calls are no-ops unless Verbose is true; WARN and INFO always print.
type Logger struct {
	Verbose bool
	out     *log.Logger
}

// New creates a Logger writing to stderr with the given prefix.
func New(prefix string, verbose bool) *Logger {
	return &Logger{
		Verbose: verbose,
		out:     log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

// Debugf logs at DEBUG level; suppressed unless Verbose is set.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || !l.Verbose {
		return
	}
	l.out.Output(2, fmt.Sprintf(format, args...))
}

// Warnf logs at WARN level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.out.Output(2, "WARN: "+fmt.Sprintf(format, args...))
}

// Infof logs at INFO level.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.out.Output(2, fmt.Sprintf(format, args...))
}
