package heatgrid

import "github.com/arloliu/heatgrid/types"

// Re-export types from the internal types package.
//
// This file provides a stable public API for the library's core types. It
// uses type aliases so internal packages can depend on `types` without
// importing the root `heatgrid` package, while users still write
// `heatgrid.Grid`, `heatgrid.Logger`, etc.
type (
	State          = types.State
	Grid           = types.Grid
	Partition      = types.Partition
	BoundaryPolicy = types.BoundaryPolicy
	HeatSource     = types.HeatSource
	Envelope       = types.Envelope
	Address        = types.Address
)

// Re-export interfaces from the internal types package for convenience.
type (
	Transport         = types.Transport
	PartitionStrategy = types.PartitionStrategy
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export State constants from the internal types package.
const (
	StateIdle         = types.StateIdle
	StateDistributing = types.StateDistributing
	StateExchanging   = types.StateExchanging
	StateUpdating     = types.StateUpdating
	StateCollecting   = types.StateCollecting
	StateRecording    = types.StateRecording
	StateDone         = types.StateDone
	StateFailed       = types.StateFailed
)

// Re-export boundary policies.
const (
	BoundaryNeumann    = types.BoundaryNeumann
	BoundaryDirichlet  = types.BoundaryDirichlet
	BoundaryConvective = types.BoundaryConvective
)
