// Package logger provides verbose logging for coach.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr so users can follow how a prompt was assembled.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write prints one line with the given level tag.
// always bypasses the verbose check.
func write(tag string, always bool, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && !always {
		return
	}
	fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { write("DEBUG", false, format, args) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { write("INFO", false, format, args) }

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) { write("WARN", false, format, args) }

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) { write("ERROR", true, format, args) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Stage prints a section header and returns a func that logs how long
// the stage took. Typical use is defer logger.Stage("Ranking")().
func Stage(name string) func() {
	Section(name)
	start := now()
	return func() {
		Debug("%s took %s", name, now().Sub(start).Round(time.Millisecond))
	}
}
