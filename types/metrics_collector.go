package types

// MetricsCollector defines methods for recording solver metrics.
//
// Implementations must be non-blocking and thread-safe: worker goroutines
// record exchange metrics concurrently.
type MetricsCollector interface {
	SimulatorMetrics
	ExchangeMetrics
	SnapshotMetrics
}

// SimulatorMetrics defines metrics for the orchestrator.
type SimulatorMetrics interface {
	// RecordStateTransition records a coordinator state transition.
	//
	// Parameters:
	//   - from: Previous state
	//   - to: New state
	//   - duration: Seconds spent in the previous state
	RecordStateTransition(from, to State, duration float64)

	// RecordIteration records the wall-clock duration of one full iteration in seconds.
	RecordIteration(duration float64)

	// RecordRunResult records the outcome of a run ("done" or "failed").
	RecordRunResult(result string)
}

// ExchangeMetrics defines metrics for halo exchange.
type ExchangeMetrics interface {
	// RecordHaloExchange records one worker's exchange latency.
	//
	// Parameters:
	//   - worker: Worker index
	//   - duration: Seconds from first send to last receive
	//   - success: false when the exchange failed
	RecordHaloExchange(worker int, duration float64, success bool)
}

// SnapshotMetrics defines metrics for snapshot recording.
type SnapshotMetrics interface {
	// RecordSnapshot records an appended frame of the given size in bytes.
	RecordSnapshot(size int)
}
