package heatgrid

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/heatgrid/internal/halo"
	"github.com/arloliu/heatgrid/internal/hooks"
	"github.com/arloliu/heatgrid/internal/logger"
	"github.com/arloliu/heatgrid/internal/metrics"
	"github.com/arloliu/heatgrid/snapshot"
	"github.com/arloliu/heatgrid/stencil"
	"github.com/arloliu/heatgrid/strategy"
	"github.com/arloliu/heatgrid/transport"
	"github.com/arloliu/heatgrid/types"
)

// Result is the outcome of a completed run.
type Result struct {
	// Frames holds one snapshot per recorded iteration, starting with iteration 0.
	Frames []snapshot.Frame

	// Grid is the final global grid, heat sources applied.
	Grid Grid

	// Iterations is the number of completed iterations.
	Iterations int

	// Elapsed is the wall-clock duration of Run.
	Elapsed time.Duration
}

// Simulator runs an explicit heat diffusion simulation on a grid split into
// row blocks, one per worker.
//
// The coordinator goroutine owns the global grid and doubles as worker 0.
// Every iteration it distributes blocks, lets all workers exchange halo rows
// with their neighbours and apply the stencil, collects the updated blocks
// and records a snapshot. Workers W-1..1 run on their own goroutines and only
// ever see copies of the grid.
//
// Lifecycle:
//   - Create with NewSimulator()
//   - Call Run() once; a second call returns ErrAlreadyStarted
//   - Observe progress through Hooks, State() or the logger
type Simulator struct {
	cfg        Config
	params     stencil.Params
	partitions []Partition

	transport     Transport
	ownsTransport bool

	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger
	recorder *snapshot.Recorder

	state      atomic.Int32 // State
	started    atomic.Bool
	stateSince time.Time // coordinator goroutine only
}

// NewSimulator creates a Simulator from cfg.
//
// Missing configuration values are filled with defaults before validation.
//
// Parameters:
//   - cfg: Simulation configuration (defaults applied in place)
//   - opts: Optional hooks, metrics, logger, transport, snapshot sink, strategy
//
// Returns:
//   - *Simulator: Simulator ready to Run
//   - error: ErrInvalidConfig, ErrNotImplemented or ErrTransportRequired
//
// Example:
//
//	cfg := heatgrid.DefaultConfig()
//	cfg.Workers = 4
//	sim, err := heatgrid.NewSimulator(&cfg)
//	if err != nil {
//	    return err
//	}
//	result, err := sim.Run(ctx)
func NewSimulator(cfg *Config, opts ...Option) (*Simulator, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &simulatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	hooksInstance := hooks.NewNop()
	if options.hooks != nil {
		hooksInstance = hooks.Fill(*options.hooks)
	}

	tr := options.transport
	owns := false
	switch {
	case options.transportSet && tr == nil:
		return nil, ErrTransportRequired
	case tr == nil && cfg.Transport.Kind == TransportNATS:
		return nil, fmt.Errorf("%w: the nats transport needs a connection, pass WithTransport", ErrTransportRequired)
	case tr == nil:
		tr = transport.NewChannel()
		owns = true
	}

	policy, err := types.ParseBoundaryPolicy(string(cfg.Boundary))
	if err != nil {
		return nil, err
	}
	boundary, err := stencil.BoundaryFor(policy)
	if err != nil {
		return nil, err
	}

	splitter := options.strategy
	if splitter == nil {
		splitter = strategy.NewRowBlock()
	}
	partitions, err := splitter.Split(cfg.Rows, cfg.Columns, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := checkPartitions(partitions, cfg.Rows, cfg.Columns, cfg.Workers); err != nil {
		return nil, err
	}

	recorderOpts := []snapshot.RecorderOption{snapshot.WithMetrics(metricsCollector)}
	if options.sink != nil {
		recorderOpts = append(recorderOpts, snapshot.WithSink(options.sink))
	}

	s := &Simulator{
		cfg: *cfg,
		params: stencil.Params{
			K:        cfg.Coefficient(),
			MaxTemp:  cfg.MaxTemp,
			Boundary: boundary,
		},
		partitions:    partitions,
		transport:     tr,
		ownsTransport: owns,
		hooks:         hooksInstance,
		metrics:       metricsCollector,
		logger:        loggerInstance,
		recorder:      snapshot.NewRecorder(cfg.MaxTemp, recorderOpts...),
	}
	s.state.Store(int32(StateIdle))

	return s, nil
}

// checkPartitions verifies a decomposition covers every row exactly once, in worker order.
func checkPartitions(parts []Partition, rows, cols, workers int) error {
	if len(parts) != workers {
		return fmt.Errorf("%w: strategy returned %d partitions for %d workers", ErrInvalidConfig, len(parts), workers)
	}

	next := 0
	for i, p := range parts {
		if p.Worker != i || p.StartRow != next || p.RowCount <= 0 || p.Columns != cols {
			return fmt.Errorf("%w: partition %s is not contiguous with the previous one", ErrInvalidConfig, p)
		}
		next = p.EndRow()
	}
	if next != rows {
		return fmt.Errorf("%w: partitions cover %d of %d rows", ErrInvalidConfig, next, rows)
	}

	return nil
}

// State returns the coordinator's current state.
func (s *Simulator) State() State {
	return State(s.state.Load())
}

// Partitions returns the row blocks assigned to each worker.
func (s *Simulator) Partitions() []Partition {
	out := make([]Partition, len(s.partitions))
	copy(out, s.partitions)

	return out
}

// Run executes the configured number of iterations.
//
// Any transport, timeout or stencil failure on any worker aborts the whole
// run: the shared context is cancelled, every blocked worker returns and Run
// reports the first error. There is no retry and no partial result.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - Result: Frames (Steps+1 of them), final grid, iteration count, elapsed time
//   - error: ErrAlreadyStarted, or an error wrapping ErrCommunication
func (s *Simulator) Run(ctx context.Context) (Result, error) {
	if !s.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyStarted
	}

	start := time.Now()
	s.stateSince = start

	if s.ownsTransport {
		defer func() {
			if err := s.transport.Close(); err != nil {
				s.logger.Warn("failed to close transport", "error", err)
			}
		}()
	}

	s.logger.Info("simulation starting",
		"rows", s.cfg.Rows,
		"columns", s.cfg.Columns,
		"steps", s.cfg.Steps,
		"workers", s.cfg.Workers,
		"boundary", s.cfg.Boundary.String(),
		"coefficient", s.params.K,
	)

	grid, err := s.run(ctx)
	if err != nil {
		// ctx may already be cancelled; the Failed notification must still reach hooks.
		s.transitionState(context.WithoutCancel(ctx), StateFailed)
		s.metrics.RecordRunResult("failed")
		s.logger.Error("simulation failed", "error", err, "elapsed", time.Since(start))

		return Result{}, err
	}

	s.transitionState(ctx, StateDone)
	s.metrics.RecordRunResult("done")

	elapsed := time.Since(start)
	s.logger.Info("simulation complete", "iterations", s.cfg.Steps, "elapsed", elapsed)

	return Result{
		Frames:     s.recorder.Frames(),
		Grid:       grid,
		Iterations: s.cfg.Steps,
		Elapsed:    elapsed,
	}, nil
}

func (s *Simulator) run(ctx context.Context) (Grid, error) {
	if err := s.transport.Prepare(ctx, s.addresses()); err != nil {
		return Grid{}, fmt.Errorf("%w: prepare mailboxes: %w", ErrCommunication, err)
	}

	grid := types.NewGrid(s.cfg.Rows, s.cfg.Columns)
	s.injectSources(grid)
	if err := s.recorder.Record(ctx, 0, grid); err != nil {
		return Grid{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.partitions[1:] {
		g.Go(func() error {
			return s.runWorker(gctx, p)
		})
	}
	g.Go(func() error {
		return s.coordinate(gctx, grid)
	})

	if err := g.Wait(); err != nil {
		return Grid{}, err
	}

	return grid, nil
}

// addresses lists every mailbox of the run: block and result per remote
// worker plus two halo mailboxes per adjacency.
func (s *Simulator) addresses() []types.Address {
	addrs := halo.Addresses(len(s.partitions))
	for _, p := range s.partitions[1:] {
		addrs = append(addrs,
			types.Address{Kind: types.KindBlock, From: 0, To: p.Worker},
			types.Address{Kind: types.KindResult, From: p.Worker, To: 0},
		)
	}

	return addrs
}

// coordinate runs the iteration loop on the coordinator, which is also worker 0.
func (s *Simulator) coordinate(ctx context.Context, grid Grid) error {
	own := s.partitions[0]
	exchanger := s.exchanger(own.Worker)
	interval := progressInterval(s.cfg.Steps)

	for iter := 1; iter <= s.cfg.Steps; iter++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("iteration %d: %w", iter, err)
		}
		iterStart := time.Now()

		s.transitionState(ctx, StateDistributing)
		s.injectSources(grid)
		for _, p := range s.partitions[1:] {
			if err := s.send(ctx, types.KindBlock, iter, 0, p.Worker, grid.Sub(p.StartRow, p.RowCount)); err != nil {
				return err
			}
		}
		block := grid.Sub(own.StartRow, own.RowCount)

		s.transitionState(ctx, StateExchanging)
		h, err := exchanger.Exchange(ctx, iter, block)
		if err != nil {
			return err
		}

		s.transitionState(ctx, StateUpdating)
		updated, err := stencil.Step(block, h, s.params)
		if err != nil {
			return fmt.Errorf("worker %d update at iteration %d: %w", own.Worker, iter, err)
		}

		s.transitionState(ctx, StateCollecting)
		if err := grid.Put(own.StartRow, updated); err != nil {
			return err
		}
		for _, p := range s.partitions[1:] {
			result, err := s.receive(ctx, types.KindResult, iter, p.Worker, 0, p.RowCount, p.Columns)
			if err != nil {
				return err
			}
			if err := grid.Put(p.StartRow, result); err != nil {
				return fmt.Errorf("%w: merge worker %d: %w", ErrCommunication, p.Worker, err)
			}
		}
		if err := s.hooks.OnCollected(ctx, iter, grid.Clone()); err != nil {
			s.logger.Error("collected hook error", "iteration", iter, "error", err)
		}

		s.transitionState(ctx, StateRecording)
		s.injectSources(grid)
		if err := s.recorder.Record(ctx, iter, grid); err != nil {
			return err
		}

		s.metrics.RecordIteration(time.Since(iterStart).Seconds())

		if iter%interval == 0 || iter == s.cfg.Steps {
			s.reportProgress(ctx, iter)
		}
	}

	return nil
}

// runWorker runs the iteration loop of a remote worker.
func (s *Simulator) runWorker(ctx context.Context, p Partition) error {
	exchanger := s.exchanger(p.Worker)

	for iter := 1; iter <= s.cfg.Steps; iter++ {
		block, err := s.receive(ctx, types.KindBlock, iter, 0, p.Worker, p.RowCount, p.Columns)
		if err != nil {
			return err
		}

		h, err := exchanger.Exchange(ctx, iter, block)
		if err != nil {
			return err
		}

		updated, err := stencil.Step(block, h, s.params)
		if err != nil {
			return fmt.Errorf("worker %d update at iteration %d: %w", p.Worker, iter, err)
		}

		if err := s.send(ctx, types.KindResult, iter, p.Worker, 0, updated); err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulator) exchanger(worker int) *halo.Exchanger {
	return halo.New(worker, len(s.partitions), s.transport,
		halo.WithTimeout(s.cfg.ExchangeTimeout),
		halo.WithMetrics(s.metrics),
	)
}

func (s *Simulator) send(ctx context.Context, kind types.EnvelopeKind, iter, from, to int, block Grid) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExchangeTimeout)
	defer cancel()

	err := s.transport.Send(ctx, types.Envelope{
		Kind:      kind,
		Iteration: iter,
		From:      from,
		To:        to,
		Rows:      block.Rows,
		Cols:      block.Cols,
		Cells:     block.Cells,
	})
	if err != nil {
		return fmt.Errorf("%w: send %s %d->%d at iteration %d: %w", ErrCommunication, kind, from, to, iter, err)
	}

	return nil
}

func (s *Simulator) receive(ctx context.Context, kind types.EnvelopeKind, iter, from, to, rows, cols int) (Grid, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExchangeTimeout)
	defer cancel()

	addr := types.Address{Kind: kind, From: from, To: to}
	env, err := s.transport.Receive(ctx, addr)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: receive %s at iteration %d: %w", ErrCommunication, addr, iter, err)
	}

	if env.Iteration != iter || env.Rows != rows || env.Cols != cols || len(env.Cells) != rows*cols {
		return Grid{}, fmt.Errorf("%w: %w: %s got iteration %d shape %dx%d, expected iteration %d shape %dx%d",
			ErrCommunication, ErrStaleMessage, addr, env.Iteration, env.Rows, env.Cols, iter, rows, cols)
	}

	return env.Grid(), nil
}

func (s *Simulator) injectSources(grid Grid) {
	for _, src := range s.cfg.Sources {
		grid.Set(src.Row, src.Col, src.Temperature)
	}
}

// progressInterval returns how many iterations pass between progress reports.
func progressInterval(steps int) int {
	return max(steps/10, 1)
}

func (s *Simulator) reportProgress(ctx context.Context, iter int) {
	s.logger.Info("simulation progress",
		"iteration", iter,
		"total", s.cfg.Steps,
		"percent", iter*100/s.cfg.Steps,
	)

	if err := s.hooks.OnProgress(ctx, iter, s.cfg.Steps); err != nil {
		s.logger.Error("progress hook error", "iteration", iter, "error", err)
	}
}

// transitionState moves the coordinator to a new state, records the time
// spent in the previous one and triggers the state hook.
func (s *Simulator) transitionState(ctx context.Context, to State) {
	from := State(s.state.Swap(int32(to))) //nolint:gosec // State values are controlled enum
	now := time.Now()
	spent := now.Sub(s.stateSince)
	s.stateSince = now

	s.logger.Debug("state transition",
		"from", from.String(),
		"to", to.String(),
	)

	if err := s.hooks.OnStateChanged(ctx, from, to); err != nil {
		s.logger.Error("state change hook error", "from", from, "to", to, "error", err)
	}

	s.metrics.RecordStateTransition(from, to, spent.Seconds())
}
