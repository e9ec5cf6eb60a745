// Package debug provides conditional debug logging for relmap.
//
// Debug logging is enabled by setting the RELMAP_DEBUG environment variable:
//
//	RELMAP_DEBUG=1 relmap --root acct-42
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
package debug

import (
	"log"
	"os"
)

var (
	// enabled is true when RELMAP_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [RELMAP] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("RELMAP_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[RELMAP] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}
