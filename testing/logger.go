package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/heatgrid/types"
)

// NewTestLogger returns a Logger that routes records to t.Logf so they show
// up next to the failing assertion.
//
// Workers log from their own goroutines, so Fatal marks the test failed with
// t.Errorf instead of stopping it.
//
// Example:
//
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithLogger(heattest.NewTestLogger(t)))
func NewTestLogger(t testing.TB) types.Logger {
	return &testLogger{t: t}
}

type testLogger struct {
	t testing.TB
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.log("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.log("INFO", msg, keysAndValues) }
func (l *testLogger) Warn(msg string, keysAndValues ...any)  { l.log("WARN", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.log("ERROR", msg, keysAndValues) }

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Helper()
	l.t.Errorf("FATAL %s%s", msg, fields(keysAndValues))
}

func (l *testLogger) log(level, msg string, keysAndValues []any) {
	l.t.Helper()
	l.t.Logf("%s %s%s", level, msg, fields(keysAndValues))
}

// fields renders key/value pairs as " k=v k=v"; a dangling key gets "<missing>".
func fields(keysAndValues []any) string {
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", keysAndValues[i])
		}
	}

	return b.String()
}
