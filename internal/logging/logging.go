// Package logging builds the leveled logger factory shared by the engine,
// the audio and stream collaborators and the WebRTC stack.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pion/logging"
)

// ParseLevel maps a level name to a pion log level. Unknown names map to
// error.
func ParseLevel(name string) logging.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return logging.LogLevelTrace
	case "debug":
		return logging.LogLevelDebug
	case "info":
		return logging.LogLevelInfo
	case "warn", "warning":
		return logging.LogLevelWarn
	case "disabled", "off", "none":
		return logging.LogLevelDisabled
	default:
		return logging.LogLevelError
	}
}

// NewFactory returns a factory writing to w (stderr when nil) at level.
func NewFactory(level string, w io.Writer) *logging.DefaultLoggerFactory {
	if w == nil {
		w = os.Stderr
	}
	return &logging.DefaultLoggerFactory{
		Writer:          w,
		DefaultLogLevel: ParseLevel(level),
		ScopeLevels:     make(map[string]logging.LogLevel),
	}
}
