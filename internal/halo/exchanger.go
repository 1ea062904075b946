package halo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/heatgrid/internal/metrics"
	"github.com/arloliu/heatgrid/stencil"
	"github.com/arloliu/heatgrid/types"
)

// Exchanger performs the halo exchange for one worker.
type Exchanger struct {
	worker    int
	workers   int
	transport types.Transport
	timeout   time.Duration
	metrics   types.ExchangeMetrics
}

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithTimeout bounds each Exchange call. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Exchanger) {
		e.timeout = d
	}
}

// WithMetrics sets the metrics sink for exchange latency.
func WithMetrics(m types.ExchangeMetrics) Option {
	return func(e *Exchanger) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New creates an exchanger for worker of workers, using tr for all messages.
func New(worker, workers int, tr types.Transport, opts ...Option) *Exchanger {
	e := &Exchanger{
		worker:    worker,
		workers:   workers,
		transport: tr,
		metrics:   metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// HasUpper reports whether the worker has a neighbour above it.
func (e *Exchanger) HasUpper() bool {
	return e.worker > 0
}

// HasLower reports whether the worker has a neighbour below it.
func (e *Exchanger) HasLower() bool {
	return e.worker < e.workers-1
}

// Addresses returns every halo mailbox of a run with the given worker count:
// two directed mailboxes per adjacency.
func Addresses(workers int) []types.Address {
	if workers < 2 {
		return nil
	}

	addrs := make([]types.Address, 0, 2*(workers-1))
	for i := range workers - 1 {
		addrs = append(addrs,
			types.Address{Kind: types.KindHalo, From: i, To: i + 1},
			types.Address{Kind: types.KindHalo, From: i + 1, To: i},
		)
	}

	return addrs
}

// Exchange sends the block's edge rows to its neighbours and receives their
// edge rows in return.
//
// Parameters:
//   - ctx: Context for cancellation; aborts pending sends and receives
//   - iteration: Current iteration, stamped on sent rows and checked on received rows
//   - block: The worker's local block (only read)
//
// Returns:
//   - stencil.Halo: Upper/Lower rows; nil on sides without a neighbour
//   - error: Wrapped types.ErrCommunication on any failure
func (e *Exchanger) Exchange(ctx context.Context, iteration int, block types.Grid) (stencil.Halo, error) {
	start := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var halo stencil.Halo
	g, gctx := errgroup.WithContext(ctx)

	if e.HasUpper() {
		g.Go(func() error {
			return e.send(gctx, iteration, e.worker-1, block.Row(0))
		})
		g.Go(func() error {
			row, err := e.receive(gctx, iteration, e.worker-1, block.Cols)
			halo.Upper = row

			return err
		})
	}
	if e.HasLower() {
		g.Go(func() error {
			return e.send(gctx, iteration, e.worker+1, block.Row(block.Rows-1))
		})
		g.Go(func() error {
			row, err := e.receive(gctx, iteration, e.worker+1, block.Cols)
			halo.Lower = row

			return err
		})
	}

	err := g.Wait()
	e.metrics.RecordHaloExchange(e.worker, time.Since(start).Seconds(), err == nil)
	if err != nil {
		return stencil.Halo{}, fmt.Errorf("%w: worker %d halo exchange at iteration %d: %w",
			types.ErrCommunication, e.worker, iteration, err)
	}

	return halo, nil
}

func (e *Exchanger) send(ctx context.Context, iteration, to int, row []float64) error {
	cells := make([]float64, len(row))
	copy(cells, row)

	return e.transport.Send(ctx, types.Envelope{
		Kind:      types.KindHalo,
		Iteration: iteration,
		From:      e.worker,
		To:        to,
		Rows:      1,
		Cols:      len(cells),
		Cells:     cells,
	})
}

func (e *Exchanger) receive(ctx context.Context, iteration, from, cols int) ([]float64, error) {
	env, err := e.transport.Receive(ctx, types.Address{Kind: types.KindHalo, From: from, To: e.worker})
	if err != nil {
		return nil, err
	}

	switch {
	case env.Iteration != iteration:
		return nil, fmt.Errorf("%w: halo from worker %d is for iteration %d, expected %d",
			types.ErrStaleMessage, from, env.Iteration, iteration)
	case env.From != from:
		return nil, fmt.Errorf("%w: halo claims sender %d, expected %d", types.ErrStaleMessage, env.From, from)
	case len(env.Cells) != cols:
		return nil, fmt.Errorf("%w: halo from worker %d has %d cells, expected %d",
			types.ErrStaleMessage, from, len(env.Cells), cols)
	}

	return env.Cells, nil
}
