// Package monitoring provides the process-wide diagnostic logger used by the
// analysis pipeline.
package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or mute
// it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// RunLogf returns a logger that prefixes every line with the run ID, so
// interleaved output from concurrently admitted runs stays attributable.
func RunLogf(runID string) func(format string, v ...interface{}) {
	prefix := fmt.Sprintf("[run %s] ", runID)
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
