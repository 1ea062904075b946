package types

import "fmt"

// Partition describes the contiguous row range of the global grid owned by one worker.
//
// Partitions produced for a run are ordered by Worker, never overlap and their
// RowCount values sum to the number of grid rows.
type Partition struct {
	// Worker is the zero-based worker index that owns this partition.
	Worker int `json:"worker"`

	// StartRow is the first global row index of the partition.
	StartRow int `json:"startRow"`

	// RowCount is the number of rows in the partition.
	RowCount int `json:"rowCount"`

	// Columns is the number of columns (identical for every partition).
	Columns int `json:"columns"`
}

// EndRow returns the global row index one past the last row of the partition.
func (p Partition) EndRow() int {
	return p.StartRow + p.RowCount
}

// Cells returns the number of cells in the partition.
func (p Partition) Cells() int {
	return p.RowCount * p.Columns
}

// String returns a compact human-readable description of the partition.
func (p Partition) String() string {
	return fmt.Sprintf("worker-%d[%d:%d)x%d", p.Worker, p.StartRow, p.EndRow(), p.Columns)
}

// PartitionStrategy splits a grid into per-worker partitions.
//
// Implementations must be deterministic (same input, same output) and free of
// side effects; the orchestrator calls Split exactly once per run.
type PartitionStrategy interface {
	// Split divides a rows×cols grid among workers.
	//
	// Parameters:
	//   - rows: Number of grid rows
	//   - cols: Number of grid columns
	//   - workers: Number of workers
	//
	// Returns:
	//   - []Partition: One partition per worker, ordered by worker index
	//   - error: Split error (e.g., no workers, more workers than rows)
	Split(rows, cols, workers int) ([]Partition, error)
}
