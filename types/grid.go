package types

import "fmt"

// Grid is a dense row-major field of temperatures.
//
// The same type is used for the coordinator's global grid and for each
// worker's local block. A Grid is never shared between goroutines: Sub and
// Clone return independent copies.
type Grid struct {
	Rows  int
	Cols  int
	Cells []float64
}

// NewGrid allocates a zero-filled rows×cols grid.
func NewGrid(rows, cols int) Grid {
	return Grid{Rows: rows, Cols: cols, Cells: make([]float64, rows*cols)}
}

// At returns the value at (r, c).
func (g Grid) At(r, c int) float64 {
	return g.Cells[r*g.Cols+c]
}

// Set stores v at (r, c).
func (g Grid) Set(r, c int, v float64) {
	g.Cells[r*g.Cols+c] = v
}

// Row returns row r as a slice view into the grid storage.
// Callers that hand the row to another worker must copy it first.
func (g Grid) Row(r int) []float64 {
	return g.Cells[r*g.Cols : (r+1)*g.Cols]
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	cells := make([]float64, len(g.Cells))
	copy(cells, g.Cells)

	return Grid{Rows: g.Rows, Cols: g.Cols, Cells: cells}
}

// Sub copies the rows [start, start+count) into a new grid.
func (g Grid) Sub(start, count int) Grid {
	out := NewGrid(count, g.Cols)
	copy(out.Cells, g.Cells[start*g.Cols:(start+count)*g.Cols])

	return out
}

// Put copies block into the grid starting at row start.
//
// Returns:
//   - error: Non-nil when the block does not fit the grid
func (g Grid) Put(start int, block Grid) error {
	if block.Cols != g.Cols {
		return fmt.Errorf("block has %d columns, grid has %d", block.Cols, g.Cols)
	}
	if start < 0 || start+block.Rows > g.Rows {
		return fmt.Errorf("block rows [%d:%d) outside grid of %d rows", start, start+block.Rows, g.Rows)
	}
	if len(block.Cells) != block.Rows*block.Cols {
		return fmt.Errorf("block holds %d cells, expected %d", len(block.Cells), block.Rows*block.Cols)
	}
	copy(g.Cells[start*g.Cols:], block.Cells)

	return nil
}
