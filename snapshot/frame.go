package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/heatgrid/stencil"
	"github.com/arloliu/heatgrid/types"
)

// ErrCorruptFrame is returned when a frame's checksum does not match its data.
var ErrCorruptFrame = errors.New("corrupt snapshot frame")

// Frame is one recorded grid state.
type Frame struct {
	Iteration int    `msgpack:"i"`
	Rows      int    `msgpack:"r"`
	Cols      int    `msgpack:"c"`
	Data      []byte `msgpack:"d"`
	Checksum  uint64 `msgpack:"x"`
}

// NewFrame quantizes grid and stamps the result with iteration and checksum.
func NewFrame(iteration int, grid types.Grid, maxTemp float64) Frame {
	data := Quantize(grid, maxTemp)

	return Frame{
		Iteration: iteration,
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		Data:      data,
		Checksum:  xxh3.Hash(data),
	}
}

// Quantize maps every cell to round(clamp(t, 0, maxTemp) / maxTemp * 255).
//
// Parameters:
//   - grid: Source grid (not modified)
//   - maxTemp: Temperature mapped to 255; must be positive
//
// Returns:
//   - []byte: rows*cols bytes in row-major order
func Quantize(grid types.Grid, maxTemp float64) []byte {
	out := make([]byte, len(grid.Cells))
	for i, t := range grid.Cells {
		out[i] = byte(math.Round(stencil.Clamp(t, maxTemp) / maxTemp * 255))
	}

	return out
}

// At returns the byte for cell (r, c).
func (f Frame) At(r, c int) byte {
	return f.Data[r*f.Cols+c]
}

// Verify checks the frame's shape and checksum.
func (f Frame) Verify() error {
	if len(f.Data) != f.Rows*f.Cols {
		return fmt.Errorf("%w: iteration %d has %d bytes for %dx%d",
			ErrCorruptFrame, f.Iteration, len(f.Data), f.Rows, f.Cols)
	}
	if sum := xxh3.Hash(f.Data); sum != f.Checksum {
		return fmt.Errorf("%w: iteration %d checksum %016x, want %016x",
			ErrCorruptFrame, f.Iteration, sum, f.Checksum)
	}

	return nil
}
