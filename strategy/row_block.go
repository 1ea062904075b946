package strategy

import (
	"fmt"

	"github.com/arloliu/heatgrid/types"
)

// RowBlock implements contiguous row-wise domain decomposition.
type RowBlock struct{}

var _ types.PartitionStrategy = (*RowBlock)(nil)

// NewRowBlock creates a new row-block strategy.
//
// Every worker receives floor(rows/workers) consecutive rows; the first
// rows%workers workers receive one extra row each.
//
// Returns:
//   - *RowBlock: Initialized row-block strategy
//
// Example:
//
//	parts, err := strategy.NewRowBlock().Split(10, 10, 3)
//	// parts[0] = rows [0:4), parts[1] = [4:7), parts[2] = [7:10)
func NewRowBlock() *RowBlock {
	return &RowBlock{}
}

// Split divides a rows×cols grid into contiguous row blocks.
//
// Parameters:
//   - rows: Number of grid rows (> 0)
//   - cols: Number of grid columns (> 0)
//   - workers: Number of workers (1..rows)
//
// Returns:
//   - []types.Partition: Partitions ordered by worker index
//   - error: ErrNoWorkers, ErrInvalidDimensions or ErrTooManyWorkers
func (rb *RowBlock) Split(rows, cols, workers int) ([]types.Partition, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if workers > rows {
		return nil, fmt.Errorf("%w: %d workers for %d rows", ErrTooManyWorkers, workers, rows)
	}

	base := rows / workers
	extra := rows % workers

	parts := make([]types.Partition, workers)
	start := 0
	for i := range workers {
		count := base
		if i < extra {
			count++
		}
		parts[i] = types.Partition{
			Worker:   i,
			StartRow: start,
			RowCount: count,
			Columns:  cols,
		}
		start += count
	}

	return parts, nil
}
