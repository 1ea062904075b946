// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/heatgrid/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used as the default when no collector is supplied.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SimulatorMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State, _ /* duration */ float64) {
	// No-op
}

// RecordIteration discards the iteration duration metric.
func (n *NopMetrics) RecordIteration(_ /* duration */ float64) {
	// No-op
}

// RecordRunResult discards the run outcome metric.
func (n *NopMetrics) RecordRunResult(_ /* result */ string) {
	// No-op
}

// ExchangeMetrics implementation

// RecordHaloExchange discards the halo exchange metric.
func (n *NopMetrics) RecordHaloExchange(_ /* worker */ int, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// SnapshotMetrics implementation

// RecordSnapshot discards the snapshot size metric.
func (n *NopMetrics) RecordSnapshot(_ /* size */ int) {
	// No-op
}
