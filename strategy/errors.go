package strategy

import "errors"

var (
	// ErrNoWorkers indicates that no workers were provided for the split.
	ErrNoWorkers = errors.New("no workers available for partitioning")

	// ErrInvalidDimensions indicates a grid with no rows or no columns.
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")

	// ErrTooManyWorkers indicates more workers than rows; such a worker would own no rows.
	ErrTooManyWorkers = errors.New("more workers than grid rows")
)
