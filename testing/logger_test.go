package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	require.Empty(t, fields(nil))
	require.Equal(t, " iteration=3 worker=1", fields([]any{"iteration", 3, "worker", 1}))
	require.Equal(t, " from=Idle to=<missing>", fields([]any{"from", "Idle", "to"}))
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)

	require.NotPanics(t, func() {
		logger.Debug("state transition", "from", "Idle", "to", "Distributing")
		logger.Info("simulation progress", "iteration", 5, "total", 10)
		logger.Warn("no heat sources configured")
		logger.Error("hook error", "error", "boom")
	})
}
