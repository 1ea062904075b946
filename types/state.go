package types

// State represents the simulation lifecycle state of the coordinator.
//
// A run progresses through the per-iteration phases in a fixed order:
//
//	StateIdle → StateDistributing → StateExchanging → StateUpdating →
//	StateCollecting → StateRecording → (next iteration) → StateDone
//
// StateFailed is entered when any worker aborts the run. StateDone and
// StateFailed are terminal.
type State int

const (
	// StateIdle is the initial state before the first iteration.
	StateIdle State = iota

	// StateDistributing indicates heat sources are being injected and blocks sent to workers.
	StateDistributing

	// StateExchanging indicates halo rows are being exchanged between adjacent partitions.
	StateExchanging

	// StateUpdating indicates the stencil pass is running on every local block.
	StateUpdating

	// StateCollecting indicates the coordinator is merging updated blocks into the global grid.
	StateCollecting

	// StateRecording indicates heat sources are re-injected and a snapshot appended.
	StateRecording

	// StateDone indicates the configured number of iterations completed.
	StateDone

	// StateFailed indicates the run was aborted by a worker or transport failure.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDistributing:
		return "Distributing"
	case StateExchanging:
		return "Exchanging"
	case StateUpdating:
		return "Updating"
	case StateCollecting:
		return "Collecting"
	case StateRecording:
		return "Recording"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
