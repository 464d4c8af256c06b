// Package natlog provides the small stdlib-backed logger used throughout
// this module for connection and decode diagnostics. No logging library is
// pulled in to provide it, matching the rest of this dependency set.
package natlog

import (
	"io"
	"log"
	"os"
)

// Logger wraps the standard library logger with the level-prefixed
// convenience methods used by the Network Engine and Client Facade.
type Logger struct {
	*log.Logger
}

// Default returns a Logger writing to stderr with a timestamp prefix.
func Default() *Logger {
	return New(os.Stderr)
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{Logger: log.New(w, "", log.LstdFlags)}
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...any) {
	l.Printf("INFO "+format, args...)
}

// Warnf logs a warning, e.g. a dropped malformed packet or unsupported
// version (§4.1).
func (l *Logger) Warnf(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

// Errorf logs an error, e.g. handshake failure.
func (l *Logger) Errorf(format string, args ...any) {
	l.Printf("ERROR "+format, args...)
}
