package types

// Logger is the structured logger used throughout heatgrid.
//
// Every method takes a message followed by alternating keys and values, the
// calling convention of slog and zap's SugaredLogger, so either can be
// adapted with a thin wrapper.
type Logger interface {
	// Debug records per-iteration detail such as state transitions.
	Debug(msg string, keysAndValues ...any)

	// Info records run start, progress and completion.
	Info(msg string, keysAndValues ...any)

	// Warn records suspicious but valid configuration.
	Warn(msg string, keysAndValues ...any)

	// Error records hook failures and aborted runs.
	Error(msg string, keysAndValues ...any)

	// Fatal records an unrecoverable error. Production implementations exit
	// the process afterwards; test and no-op implementations do not.
	Fatal(msg string, keysAndValues ...any)
}
