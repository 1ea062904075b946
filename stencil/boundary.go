package stencil

import (
	"fmt"

	"github.com/arloliu/heatgrid/types"
)

// BoundaryFunc returns the value substituted for a neighbour that lies outside
// the grid, given the value of the cell being updated.
type BoundaryFunc func(current float64) float64

// Neumann is the insulated (no-flux) boundary: the missing neighbour mirrors the cell.
func Neumann(current float64) float64 {
	return current
}

// Dirichlet holds the boundary at absolute zero.
func Dirichlet(_ /* current */ float64) float64 {
	return 0
}

// BoundaryFor returns the boundary function for a policy.
//
// Returns:
//   - BoundaryFunc: Neumann or Dirichlet
//   - error: types.ErrNotImplemented for BoundaryConvective, types.ErrInvalidConfig for unknown policies
func BoundaryFor(policy types.BoundaryPolicy) (BoundaryFunc, error) {
	switch policy {
	case types.BoundaryNeumann, "":
		return Neumann, nil
	case types.BoundaryDirichlet:
		return Dirichlet, nil
	case types.BoundaryConvective:
		return nil, fmt.Errorf("convective boundary: %w", types.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("%w: unknown boundary policy %q", types.ErrInvalidConfig, policy)
	}
}
