// Package types provides core type definitions and interfaces for the heatgrid library.
//
// This package contains shared types that are used across multiple packages.
// Keeping them here avoids import cycles between the root heatgrid package
// and its internal implementations.
//
// Key types:
//   - Grid: Row-major temperature field used for both global grid and local blocks
//   - Partition: Contiguous row range owned by one worker
//   - State: Coordinator lifecycle state
//   - Envelope, Address, Transport: Worker-to-worker messaging
//   - Logger, MetricsCollector, Hooks: Ambient integration points
package types
