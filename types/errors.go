package types

import "errors"

// Sentinel errors for the heatgrid library.
//
// Components wrap these with context using fmt.Errorf("%s: %w", msg, err) so
// callers can classify failures with errors.Is.

// Configuration errors - returned before any simulation state exists.
var (
	// ErrInvalidConfig is returned when the configuration is invalid: missing,
	// non-numeric or non-positive dimensions, unstable coefficients, unknown
	// policies or transports.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotImplemented is returned for declared but unimplemented features,
	// such as the convective boundary policy.
	ErrNotImplemented = errors.New("not implemented")
)

// Simulator errors - lifecycle errors returned by the orchestrator.
var (
	// ErrAlreadyStarted is returned when Run is called on a simulator that already ran.
	ErrAlreadyStarted = errors.New("simulator already started")

	// ErrTransportRequired is returned when a nil transport is supplied.
	ErrTransportRequired = errors.New("transport is required")
)

// Communication errors - any distribute, halo or collect fault. These are
// fatal: a missed halo silently corrupts the stencil, so runs never retry.
var (
	// ErrCommunication is returned when a send, receive or decode fails.
	ErrCommunication = errors.New("communication failure")

	// ErrStaleMessage is returned when a received envelope belongs to another
	// iteration, sender or shape than expected.
	ErrStaleMessage = errors.New("stale or mismatched message")

	// ErrTransportClosed is returned by transports after Close.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnknownMailbox is returned when sending to or receiving from an
	// address that was not registered with Prepare.
	ErrUnknownMailbox = errors.New("unknown mailbox")
)
