// Package logging adapts log/slog to the heatgrid Logger interface.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arloliu/heatgrid/types"
)

// SlogLogger writes heatgrid log records through a slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
	exit   func(code int)
}

var _ types.Logger = (*SlogLogger)(nil)

// New builds a logger from the textual level and format used by config files
// and command-line flags.
//
// Unknown levels fall back to info; any format other than "json" selects the
// text handler.
//
// Parameters:
//   - level: One of "debug", "info", "warn", "error"
//   - format: "text" or "json"
//   - w: Destination for log records
//
// Returns:
//   - *SlogLogger: Logger writing to w
//
// Example:
//
//	logger := logging.New("debug", "json", os.Stderr)
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithLogger(logger))
func New(level, format string, w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return NewSlog(slog.New(handler))
}

// NewSlog wraps an existing slog.Logger, for callers that already configured
// their own handler.
func NewSlog(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger, exit: os.Exit}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that adds keysAndValues to every record, e.g. a
// worker id for per-worker output.
func (l *SlogLogger) With(keysAndValues ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(keysAndValues...), exit: l.exit}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

// Fatal logs at error level with a fatal=true attribute, then exits with
// status 1.
func (l *SlogLogger) Fatal(msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "fatal", true)...)
	l.exit(1)
}
