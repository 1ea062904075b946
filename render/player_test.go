package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid/snapshot"
)

func TestPlayer_LoopsInOrder(t *testing.T) {
	frames := []snapshot.Frame{frame(0, 1, 1, 0), frame(1, 1, 1, 0), frame(2, 1, 1, 0)}

	var seen []int
	p := Player{Delay: time.Millisecond, Loops: 2}
	err := p.Play(t.Context(), frames, func(_ context.Context, f snapshot.Frame) error {
		seen = append(seen, f.Iteration)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 0, 1, 2}, seen)
}

func TestPlayer_MinimumDelay(t *testing.T) {
	frames := []snapshot.Frame{frame(0, 1, 1, 0), frame(1, 1, 1, 0), frame(2, 1, 1, 0)}

	start := time.Now()
	p := Player{Delay: 20 * time.Millisecond, Loops: 1}
	require.NoError(t, p.Play(t.Context(), frames, func(context.Context, snapshot.Frame) error { return nil }))

	// The first frame shows immediately, the next two wait one delay each.
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPlayer_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	count := 0
	p := Player{Delay: time.Millisecond}
	err := p.Play(ctx, []snapshot.Frame{frame(0, 1, 1, 0)}, func(context.Context, snapshot.Frame) error {
		count++
		if count == 5 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestPlayer_PropagatesError(t *testing.T) {
	boom := errors.New("display gone")
	p := Player{Delay: time.Millisecond}

	err := p.Play(t.Context(), []snapshot.Frame{frame(0, 1, 1, 0)}, func(context.Context, snapshot.Frame) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestPlayer_NoFrames(t *testing.T) {
	p := Player{}
	require.NoError(t, p.Play(t.Context(), nil, func(context.Context, snapshot.Frame) error {
		t.Fatal("not called")
		return nil
	}))
}
