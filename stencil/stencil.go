package stencil

import (
	"fmt"
	"math"

	"github.com/arloliu/heatgrid/types"
)

// MaxStableCoefficient is the largest k for which the explicit 2D scheme is stable.
const MaxStableCoefficient = 0.25

// Halo holds the rows borrowed from adjacent partitions.
//
// A nil row means there is no neighbour on that side and the boundary
// function is used instead.
type Halo struct {
	Upper []float64
	Lower []float64
}

// Params are the run-level constants of the update rule.
type Params struct {
	K        float64
	MaxTemp  float64
	Boundary BoundaryFunc
}

// Coefficient computes k = diffusivity * (stepMS/1000) / distance².
func Coefficient(diffusivity float64, stepMS int, distance float64) float64 {
	return diffusivity * (float64(stepMS) / 1000) / (distance * distance)
}

// Neighbors is the resolved 4-point neighbourhood of one cell.
type Neighbors struct {
	Current float64
	Left    float64
	Right   float64
	Up      float64
	Down    float64
}

// Resolve returns the neighbourhood of cell (r, c) of block.
//
// Column edges always use the boundary function. Row edges use the halo row
// when one is present and the boundary function otherwise.
func Resolve(block types.Grid, halo Halo, r, c int, bnd BoundaryFunc) Neighbors {
	cur := block.At(r, c)
	n := Neighbors{Current: cur}

	if c > 0 {
		n.Left = block.At(r, c-1)
	} else {
		n.Left = bnd(cur)
	}
	if c < block.Cols-1 {
		n.Right = block.At(r, c+1)
	} else {
		n.Right = bnd(cur)
	}

	switch {
	case r > 0:
		n.Up = block.At(r-1, c)
	case halo.Upper != nil:
		n.Up = halo.Upper[c]
	default:
		n.Up = bnd(cur)
	}
	switch {
	case r < block.Rows-1:
		n.Down = block.At(r+1, c)
	case halo.Lower != nil:
		n.Down = halo.Lower[c]
	default:
		n.Down = bnd(cur)
	}

	return n
}

// Laplacian returns the discrete Laplacian numerator left+right+up+down-4*current.
func (n Neighbors) Laplacian() float64 {
	return n.Left + n.Right + n.Up + n.Down - 4*n.Current
}

// Apply computes the clamped next value of the cell.
func Apply(n Neighbors, k, maxTemp float64) float64 {
	return Clamp(n.Current+k*n.Laplacian(), maxTemp)
}

// Clamp limits v to [0, maxTemp]. NaN clamps to 0.
func Clamp(v, maxTemp float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > maxTemp:
		return maxTemp
	default:
		return v
	}
}

// Step runs one stencil pass over block and returns the new block.
//
// block is only read; the result is a freshly allocated grid of the same shape.
//
// Returns:
//   - types.Grid: Updated block
//   - error: Non-nil when a halo row does not match the block width
func Step(block types.Grid, halo Halo, p Params) (types.Grid, error) {
	if halo.Upper != nil && len(halo.Upper) != block.Cols {
		return types.Grid{}, fmt.Errorf("upper halo has %d cells, block has %d columns", len(halo.Upper), block.Cols)
	}
	if halo.Lower != nil && len(halo.Lower) != block.Cols {
		return types.Grid{}, fmt.Errorf("lower halo has %d cells, block has %d columns", len(halo.Lower), block.Cols)
	}

	bnd := p.Boundary
	if bnd == nil {
		bnd = Neumann
	}

	out := types.NewGrid(block.Rows, block.Cols)
	for r := range block.Rows {
		for c := range block.Cols {
			out.Set(r, c, Apply(Resolve(block, halo, r, c, bnd), p.K, p.MaxTemp))
		}
	}

	return out, nil
}
