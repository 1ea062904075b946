package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid/types"
)

type memorySink struct {
	frames []Frame
	err    error
}

func (m *memorySink) Write(_ context.Context, f Frame) error {
	if m.err != nil {
		return m.err
	}
	m.frames = append(m.frames, f)

	return nil
}

type sizeMetrics struct {
	sizes []int
}

func (s *sizeMetrics) RecordSnapshot(size int) {
	s.sizes = append(s.sizes, size)
}

func TestRecorder_AppendsInOrder(t *testing.T) {
	sink := &memorySink{}
	m := &sizeMetrics{}
	rec := NewRecorder(1000, WithSink(sink), WithMetrics(m))

	grid := types.NewGrid(3, 3)
	for i := 0; i <= 5; i++ {
		grid.Set(1, 1, float64(i*100))
		require.NoError(t, rec.Record(t.Context(), i, grid))
	}

	frames := rec.Frames()
	require.Equal(t, 6, rec.Len())
	require.Len(t, frames, 6)
	for i, f := range frames {
		require.Equal(t, i, f.Iteration)
		require.Len(t, f.Data, 9)
	}
	require.Equal(t, byte(0), frames[0].At(1, 1))
	require.Equal(t, byte(128), frames[5].At(1, 1))

	require.Len(t, sink.frames, 6)
	require.Equal(t, []int{9, 9, 9, 9, 9, 9}, m.sizes)
}

func TestRecorder_FramesIsACopy(t *testing.T) {
	rec := NewRecorder(1000)
	require.NoError(t, rec.Record(t.Context(), 0, types.NewGrid(1, 1)))

	frames := rec.Frames()
	frames[0].Iteration = 99

	require.Equal(t, 0, rec.Frames()[0].Iteration)
}

func TestRecorder_SinkError(t *testing.T) {
	boom := errors.New("sink down")
	rec := NewRecorder(1000, WithSink(&memorySink{err: boom}))

	err := rec.Record(t.Context(), 0, types.NewGrid(1, 1))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, rec.Len(), "frame kept in memory")
}

type resettingSink struct {
	memorySink
	resets   int
	resetErr error
}

func (r *resettingSink) Reset(_ context.Context) error {
	r.resets++
	r.frames = nil

	return r.resetErr
}

func TestRecorder_ResetsSinkBeforeFirstFrame(t *testing.T) {
	sink := &resettingSink{memorySink: memorySink{frames: []Frame{{Iteration: 7}}}}
	rec := NewRecorder(1000, WithSink(sink))

	grid := types.NewGrid(2, 2)
	for i := range 3 {
		require.NoError(t, rec.Record(t.Context(), i, grid))
	}

	require.Equal(t, 1, sink.resets)
	require.Len(t, sink.frames, 3)
	require.Equal(t, 0, sink.frames[0].Iteration)
}

func TestRecorder_ResetError(t *testing.T) {
	boom := errors.New("purge failed")
	sink := &resettingSink{resetErr: boom}
	rec := NewRecorder(1000, WithSink(sink))

	err := rec.Record(t.Context(), 0, types.NewGrid(1, 1))
	require.ErrorIs(t, err, boom)
	require.Empty(t, sink.frames)
}
