package heatgrid

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid/snapshot"
	heattest "github.com/arloliu/heatgrid/testing"
	"github.com/arloliu/heatgrid/transport"
	"github.com/arloliu/heatgrid/types"
)

func runSimulation(t *testing.T, cfg Config, opts ...Option) Result {
	t.Helper()

	opts = append([]Option{WithLogger(heattest.NewTestLogger(t))}, opts...)
	sim, err := NewSimulator(&cfg, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	result, err := sim.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, StateDone, sim.State())

	return result
}

func TestSimulator_SingleSourceEndToEnd(t *testing.T) {
	cfg := DefaultConfig()

	var first Grid
	hooks := &Hooks{
		OnCollected: func(_ context.Context, iteration int, grid Grid) error {
			if iteration == 1 {
				first = grid
			}
			return nil
		},
	}

	result := runSimulation(t, cfg, WithHooks(hooks))

	require.Equal(t, 100, result.Iterations)
	require.Len(t, result.Frames, 101)
	require.Positive(t, result.Elapsed)

	// Iteration 0 is the initial state: only the source is hot.
	initial := result.Frames[0]
	require.Equal(t, 0, initial.Iteration)
	for r := range 10 {
		for c := range 10 {
			want := byte(0)
			if r == 1 && c == 1 {
				want = 255
			}
			require.Equal(t, want, initial.At(r, c), "cell (%d,%d)", r, c)
		}
	}

	// After one step with k = 0.01 the source lost 4% and each neighbour got 1%.
	require.InDelta(t, 960, first.At(1, 1), 1e-9)
	for _, n := range [][2]int{{0, 1}, {2, 1}, {1, 0}, {1, 2}} {
		require.InDelta(t, 10, first.At(n[0], n[1]), 1e-9, "neighbour %v", n)
	}
	require.Zero(t, first.At(3, 3))

	// The recorded grid has the source re-applied.
	require.Equal(t, 1000.0, result.Grid.At(1, 1))
	require.Equal(t, byte(255), result.Frames[100].At(1, 1))

	// Heat spread across the whole grid, symmetric about the source diagonal.
	require.Positive(t, result.Grid.At(9, 9))
	for r := range 10 {
		for c := range 10 {
			v := result.Grid.At(r, c)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1000.0)
			require.InDelta(t, v, result.Grid.At(c, r), 1e-9)
		}
	}

	for i, f := range result.Frames {
		require.Equal(t, i, f.Iteration)
		require.Len(t, f.Data, 100)
		require.NoError(t, f.Verify())
	}
}

func TestSimulator_OneIterationFourPointStencil(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Steps = 1
			cfg.Workers = workers

			result := runSimulation(t, cfg)

			require.Equal(t, 1, result.Iterations)
			require.Len(t, result.Frames, 2)

			grid := result.Grid
			require.Equal(t, 1000.0, grid.At(1, 1))
			for _, n := range [][2]int{{0, 1}, {2, 1}, {1, 0}, {1, 2}} {
				require.InDelta(t, 10, grid.At(n[0], n[1]), 1e-9, "neighbour %v", n)
			}
			for _, d := range [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}} {
				require.Zero(t, grid.At(d[0], d[1]), "diagonal %v", d)
				require.Zero(t, result.Frames[1].At(d[0], d[1]), "diagonal %v", d)
			}
			for _, far := range [][2]int{{3, 1}, {1, 3}, {3, 3}, {9, 9}} {
				require.Zero(t, grid.At(far[0], far[1]), "far cell %v", far)
			}

			// 10/1000 of full scale quantizes to 3.
			require.Equal(t, byte(3), result.Frames[1].At(0, 1))
			require.Equal(t, byte(255), result.Frames[1].At(1, 1))
		})
	}
}

func TestSimulator_SnapshotCount(t *testing.T) {
	for _, steps := range []int{1, 2, 5, 13} {
		cfg := TestConfig()
		cfg.Steps = steps

		result := runSimulation(t, cfg)
		require.Len(t, result.Frames, steps+1, "steps=%d", steps)
	}
}

func TestSimulator_DecompositionInvariance(t *testing.T) {
	base := TestConfig()
	base.Rows = 11
	base.Columns = 7
	base.Steps = 25
	base.Sources = []HeatSource{
		{Row: 0, Col: 0, Temperature: 1000},
		{Row: 5, Col: 3, Temperature: 700},
		{Row: 10, Col: 6, Temperature: 400},
	}

	for _, boundary := range []BoundaryPolicy{BoundaryNeumann, BoundaryDirichlet} {
		cfg := base
		cfg.Boundary = boundary
		reference := runSimulation(t, cfg)

		for _, workers := range []int{2, 3, 4, 11} {
			t.Run(string(boundary), func(t *testing.T) {
				cfg := base
				cfg.Boundary = boundary
				cfg.Workers = workers

				result := runSimulation(t, cfg)
				require.Equal(t, reference.Grid, result.Grid, "workers=%d", workers)
				require.Equal(t, reference.Frames, result.Frames, "workers=%d", workers)
			})
		}
	}
}

func TestSimulator_DirichletLosesHeatAtEdges(t *testing.T) {
	edge := func(boundary BoundaryPolicy) float64 {
		cfg := TestConfig()
		cfg.Boundary = boundary
		cfg.Steps = 3

		var corner float64
		hooks := &Hooks{
			OnCollected: func(_ context.Context, iteration int, grid Grid) error {
				if iteration == 3 {
					corner = grid.At(0, 1)
				}
				return nil
			},
		}
		runSimulation(t, cfg, WithHooks(hooks))

		return corner
	}

	require.Greater(t, edge(BoundaryNeumann), edge(BoundaryDirichlet))
}

func TestSimulator_NoSourcesStaysCold(t *testing.T) {
	cfg := TestConfig()
	cfg.Sources = []HeatSource{}
	cfg.Workers = 3

	result := runSimulation(t, cfg)
	for _, v := range result.Grid.Cells {
		require.Zero(t, v)
	}
}

func TestSimulator_StateTransitions(t *testing.T) {
	cfg := TestConfig()
	cfg.Steps = 2
	cfg.Workers = 2

	var froms, seen []State
	hooks := &Hooks{
		OnStateChanged: func(_ context.Context, from, to State) error {
			froms = append(froms, from)
			seen = append(seen, to)
			return nil
		},
	}
	runSimulation(t, cfg, WithHooks(hooks))

	require.Equal(t, StateIdle, froms[0])
	require.Equal(t, seen[:len(seen)-1], froms[1:], "every transition starts where the previous ended")

	iteration := []State{StateDistributing, StateExchanging, StateUpdating, StateCollecting, StateRecording}
	want := append(append(append([]State{}, iteration...), iteration...), StateDone)
	require.Equal(t, want, seen)
}

func TestSimulator_Progress(t *testing.T) {
	tests := []struct {
		steps int
		want  []int
	}{
		{steps: 5, want: []int{1, 2, 3, 4, 5}},
		{steps: 25, want: []int{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 25}},
		{steps: 30, want: []int{3, 6, 9, 12, 15, 18, 21, 24, 27, 30}},
	}

	for _, tt := range tests {
		cfg := TestConfig()
		cfg.Steps = tt.steps

		var got, totals []int
		hooks := &Hooks{
			OnProgress: func(_ context.Context, iteration, total int) error {
				got = append(got, iteration)
				totals = append(totals, total)
				return errors.New("hook errors are logged, not fatal")
			},
		}
		runSimulation(t, cfg, WithHooks(hooks))
		require.Equal(t, tt.want, got, "steps=%d", tt.steps)
		for _, total := range totals {
			require.Equal(t, tt.steps, total)
		}
	}
}

func TestSimulator_RunTwice(t *testing.T) {
	cfg := TestConfig()
	sim, err := NewSimulator(&cfg)
	require.NoError(t, err)

	_, err = sim.Run(t.Context())
	require.NoError(t, err)

	_, err = sim.Run(t.Context())
	require.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestSimulator_FailingTransportAborts(t *testing.T) {
	for _, kind := range []types.EnvelopeKind{types.KindHalo, types.KindBlock, types.KindResult} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := TestConfig()
			cfg.Workers = 3
			cfg.ExchangeTimeout = 500 * time.Millisecond

			inner := transport.NewChannel()
			defer inner.Close()

			faulty := heattest.NewFaultyTransport(inner, func(env types.Envelope) bool {
				return env.Kind == kind && env.Iteration == 3
			})

			sim, err := NewSimulator(&cfg, WithTransport(faulty), WithLogger(heattest.NewTestLogger(t)))
			require.NoError(t, err)

			result, err := sim.Run(t.Context())
			require.ErrorIs(t, err, ErrCommunication)
			require.ErrorIs(t, err, heattest.ErrInjected)
			require.Empty(t, result.Frames, "no partial result")
			require.Equal(t, StateFailed, sim.State())
			require.Positive(t, faulty.Fired())
		})
	}
}

func TestSimulator_ContextCancelled(t *testing.T) {
	cfg := TestConfig()
	cfg.Steps = 1000
	cfg.Workers = 2

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	hooks := &Hooks{
		OnProgress: func(_ context.Context, iteration, _ int) error {
			if iteration >= 200 {
				cancel()
			}
			return nil
		},
	}

	sim, err := NewSimulator(&cfg, WithHooks(hooks))
	require.NoError(t, err)

	_, err = sim.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateFailed, sim.State())
}

func TestSimulator_FailedHookGetsLiveContext(t *testing.T) {
	cfg := TestConfig()
	cfg.Steps = 1000
	cfg.Workers = 2

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	failedNotified := false
	var failedCtxErr error
	hooks := &Hooks{
		OnProgress: func(_ context.Context, iteration, _ int) error {
			if iteration >= 100 {
				cancel()
			}
			return nil
		},
		OnStateChanged: func(hctx context.Context, _ /* from */, to State) error {
			if to == StateFailed {
				failedNotified = true
				failedCtxErr = hctx.Err()
			}
			return nil
		},
	}

	sim, err := NewSimulator(&cfg, WithHooks(hooks))
	require.NoError(t, err)

	_, err = sim.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, failedNotified)
	require.NoError(t, failedCtxErr)
}

func TestNewSimulator_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewSimulator(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("convective boundary", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Boundary = BoundaryConvective
		_, err := NewSimulator(&cfg)
		require.ErrorIs(t, err, ErrNotImplemented)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Workers = 50
		_, err := NewSimulator(&cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil transport", func(t *testing.T) {
		cfg := TestConfig()
		_, err := NewSimulator(&cfg, WithTransport(nil))
		require.ErrorIs(t, err, ErrTransportRequired)
	})

	t.Run("nats kind without transport", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Transport.Kind = TransportNATS
		_, err := NewSimulator(&cfg)
		require.ErrorIs(t, err, ErrTransportRequired)
	})

	t.Run("strategy with gap", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Workers = 2
		_, err := NewSimulator(&cfg, WithStrategy(gapStrategy{}))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := Config{}
		sim, err := NewSimulator(&cfg)
		require.NoError(t, err)
		require.Equal(t, StateIdle, sim.State())
		require.Len(t, sim.Partitions(), 1)
		require.Equal(t, DefaultConfig(), cfg)
	})
}

type gapStrategy struct{}

func (gapStrategy) Split(_ /* rows */ int, cols, workers int) ([]Partition, error) {
	parts := make([]Partition, workers)
	for i := range parts {
		parts[i] = Partition{Worker: i, StartRow: i * 2, RowCount: 1, Columns: cols}
	}

	return parts, nil
}

func TestSimulator_NATSTransport(t *testing.T) {
	_, nc := heattest.StartEmbeddedNATS(t)

	cfg := TestConfig()
	cfg.Workers = 3
	cfg.Steps = 8
	cfg.Transport.Kind = TransportNATS

	tr, err := transport.NewNATS(nc, heattest.SubjectPrefix(t))
	require.NoError(t, err)
	defer tr.Close()

	kv := heattest.CreateJetStreamKV(t, nc, "sim-frames")
	sink := snapshot.NewKVSinkFromBucket(kv)

	viaNATS := runSimulation(t, cfg, WithTransport(tr), WithSnapshotSink(sink))

	local := cfg
	local.Transport.Kind = TransportChannel
	viaChannel := runSimulation(t, local)

	require.Equal(t, viaChannel.Grid, viaNATS.Grid)
	require.Equal(t, viaChannel.Frames, viaNATS.Frames)

	stored, err := sink.LoadAll(t.Context())
	require.NoError(t, err)
	require.Equal(t, viaNATS.Frames, stored)
}
