package render

import (
	"context"
	"errors"
	"time"

	"github.com/arloliu/heatgrid/snapshot"
)

// DefaultFrameDelay is the minimum time between two frames when none is set.
const DefaultFrameDelay = 100 * time.Millisecond

// FrameFunc displays one frame.
type FrameFunc func(ctx context.Context, f snapshot.Frame) error

// Player cycles through frames in order, waiting at least Delay between two
// consecutive frames.
type Player struct {
	// Delay is the minimum inter-frame delay. DefaultFrameDelay when <= 0.
	Delay time.Duration

	// Loops is the number of passes over the frames. Zero repeats until the
	// context is done.
	Loops int
}

// Play shows frames through fn until the loop count is reached or ctx ends.
//
// Parameters:
//   - ctx: Playback stops when it is done
//   - frames: Frames in display order
//   - fn: Called once per displayed frame
//
// Returns:
//   - error: nil after the final loop or when ctx ends; fn's error otherwise
//
// Example:
//
//	p := render.Player{Delay: 50 * time.Millisecond}
//	err := p.Play(ctx, result.Frames, render.Terminal(os.Stdout))
func (p Player) Play(ctx context.Context, frames []snapshot.Frame, fn FrameFunc) error {
	if len(frames) == 0 {
		return nil
	}

	delay := p.Delay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for loop := 0; p.Loops == 0 || loop < p.Loops; loop++ {
		for _, f := range frames {
			if ctx.Err() != nil {
				return nil
			}

			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}

			start := time.Now()
			if err := fn(ctx, f); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}

				return err
			}
			timer.Reset(delay - time.Since(start))
		}
	}

	return nil
}
