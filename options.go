package heatgrid

import "github.com/arloliu/heatgrid/snapshot"

// Option configures a Simulator with optional dependencies.
type Option func(*simulatorOptions)

// simulatorOptions holds optional Simulator configuration.
type simulatorOptions struct {
	hooks        *Hooks
	metrics      MetricsCollector
	logger       Logger
	transport    Transport
	transportSet bool
	sink         snapshot.Sink
	strategy     PartitionStrategy
}

// WithHooks sets simulation event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are skipped
//
// Returns:
//   - Option: Functional option for NewSimulator
//
// Example:
//
//	hooks := &heatgrid.Hooks{
//	    OnProgress: func(ctx context.Context, iteration, total int) error {
//	        bar.Set(iteration * 100 / total)
//	        return nil
//	    },
//	}
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *simulatorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewSimulator
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "heatgrid")
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *simulatorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewSimulator
func WithLogger(logger Logger) Option {
	return func(o *simulatorOptions) {
		o.logger = logger
	}
}

// WithTransport sets the transport used between workers.
//
// Without this option the Simulator creates and owns an in-process channel
// transport. A transport passed here is prepared by Run but never closed by
// it; the caller owns its lifecycle. Passing nil makes NewSimulator fail
// with ErrTransportRequired.
//
// Example:
//
//	tr, err := transport.NewNATS(nc, cfg.Transport.SubjectPrefix)
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithTransport(tr))
func WithTransport(tr Transport) Option {
	return func(o *simulatorOptions) {
		o.transport = tr
		o.transportSet = true
	}
}

// WithSnapshotSink mirrors every recorded frame to sink.
//
// A sink write failure aborts the run.
func WithSnapshotSink(sink snapshot.Sink) Option {
	return func(o *simulatorOptions) {
		o.sink = sink
	}
}

// WithStrategy overrides the row-block decomposition.
//
// The strategy must return contiguous partitions ordered by worker, covering
// every row exactly once; NewSimulator rejects anything else.
func WithStrategy(strategy PartitionStrategy) Option {
	return func(o *simulatorOptions) {
		o.strategy = strategy
	}
}
