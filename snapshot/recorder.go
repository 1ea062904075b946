package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/heatgrid/internal/metrics"
	"github.com/arloliu/heatgrid/types"
)

// Sink receives every frame a Recorder appends.
type Sink interface {
	// Write stores f. Frames arrive in iteration order.
	Write(ctx context.Context, f Frame) error
}

// Resetter is implemented by sinks that outlive a single run. Reset drops
// frames left by an earlier run and is called before frame 0 is written.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Recorder accumulates frames in memory and forwards them to an optional Sink.
type Recorder struct {
	maxTemp float64
	sink    Sink
	metrics types.SnapshotMetrics

	mu     sync.RWMutex
	frames []Frame
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithSink mirrors frames to s.
func WithSink(s Sink) RecorderOption {
	return func(r *Recorder) {
		r.sink = s
	}
}

// WithMetrics sets the collector notified of each appended frame.
func WithMetrics(m types.SnapshotMetrics) RecorderOption {
	return func(r *Recorder) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRecorder creates a recorder quantizing against maxTemp.
//
// Example:
//
//	rec := snapshot.NewRecorder(1000, snapshot.WithSink(sink))
//	_ = rec.Record(ctx, 0, grid)
func NewRecorder(maxTemp float64, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		maxTemp: maxTemp,
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Record quantizes grid and appends it as the frame for iteration.
//
// The frame is kept in memory even when the sink fails; the sink error is
// returned so the caller can decide whether to abort. When the first frame
// is recorded and the sink is a Resetter, the sink is reset first.
func (r *Recorder) Record(ctx context.Context, iteration int, grid types.Grid) error {
	f := NewFrame(iteration, grid, r.maxTemp)

	r.mu.Lock()
	first := len(r.frames) == 0
	r.frames = append(r.frames, f)
	r.mu.Unlock()

	if first {
		if rs, ok := r.sink.(Resetter); ok {
			if err := rs.Reset(ctx); err != nil {
				return fmt.Errorf("reset sink: %w", err)
			}
		}
	}

	r.metrics.RecordSnapshot(len(f.Data))

	if r.sink != nil {
		if err := r.sink.Write(ctx, f); err != nil {
			return fmt.Errorf("write frame %d: %w", iteration, err)
		}
	}

	return nil
}

// Frames returns the recorded frames in order. The slice is a copy; the
// frame data is shared and must not be modified.
func (r *Recorder) Frames() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Frame, len(r.frames))
	copy(out, r.frames)

	return out
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.frames)
}
