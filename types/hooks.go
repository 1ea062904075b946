package types

import "context"

// Hooks defines callbacks for simulation events.
//
// All hooks are optional and run synchronously on the coordinator goroutine,
// so they must return quickly. Hook errors are logged and never abort the run.
//
// Example:
//
//	hooks := &heatgrid.Hooks{
//	    OnProgress: func(ctx context.Context, iteration, total int) error {
//	        fmt.Printf("%d/%d\n", iteration, total)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called on every coordinator state transition.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnCollected is called after the Collecting phase with a copy of the
	// merged grid, before heat sources are re-injected.
	OnCollected func(ctx context.Context, iteration int, grid Grid) error

	// OnProgress is called at coarse checkpoints (every Steps/10 iterations,
	// every iteration when Steps < 10) and after the final iteration.
	OnProgress func(ctx context.Context, iteration, total int) error
}
