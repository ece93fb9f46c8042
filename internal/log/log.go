// Package log is a minimal, colorized stderr logger in the same ansi.Sprintf
// idiom the core package uses for compile errors.
package log

import (
	"fmt"
	"os"

	"github.com/starkandwayne/goutils/ansi"
)

var debug = false

// SetDebug toggles debug-level output, set by the CLI's -D/--debug flag.
func SetDebug(enabled bool) { debug = enabled }

// Debug prints a debug-level message to stderr, formatted with
// ansi.Sprintf, only when debug output is enabled.
func Debug(format string, args ...interface{}) {
	if !debug {
		return
	}
	fmt.Fprintln(os.Stderr, ansi.Sprintf("@c{DEBUG}: "+format, args...))
}

// Info prints an info-level message to stderr.
func Info(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ansi.Sprintf(format, args...))
}

// Warn prints a warning in yellow to stderr.
func Warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ansi.Sprintf("@y{WARNING}: "+format, args...))
}

// Error prints an error in red to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ansi.Sprintf("@r{ERROR}: "+format, args...))
}
