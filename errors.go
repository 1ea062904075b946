package heatgrid

import "github.com/arloliu/heatgrid/types"

// Sentinel errors returned by the Simulator, re-exported from types so
// callers can use errors.Is without importing the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrNotImplemented is returned when the convective boundary is selected.
	ErrNotImplemented = types.ErrNotImplemented

	// ErrAlreadyStarted is returned when Run is called twice on one Simulator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrTransportRequired is returned when WithTransport is given nil.
	ErrTransportRequired = types.ErrTransportRequired

	// ErrCommunication is returned when any distribute, halo or collect step fails.
	ErrCommunication = types.ErrCommunication

	// ErrStaleMessage is wrapped inside ErrCommunication when an envelope
	// belongs to another iteration, sender or shape.
	ErrStaleMessage = types.ErrStaleMessage
)
