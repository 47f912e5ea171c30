// Package logging wraps a zerolog.Logger the way gnark's own internal
// logger package does: a single package-level accessor plus a setter for
// tests, so callers never import zerolog directly.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// Logger returns the package-level logger used by the folding core.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger overrides the package-level logger, for tests that want to
// capture or silence output.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
