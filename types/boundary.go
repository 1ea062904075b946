package types

import (
	"fmt"
	"strings"
)

// BoundaryPolicy selects the value substituted for neighbours outside the grid.
type BoundaryPolicy string

const (
	// BoundaryNeumann models an insulated edge: the missing neighbour takes the
	// current cell's value, so no heat flows across the boundary.
	BoundaryNeumann BoundaryPolicy = "neumann"

	// BoundaryDirichlet holds the edge at absolute zero.
	BoundaryDirichlet BoundaryPolicy = "dirichlet"

	// BoundaryConvective is reserved. Selecting it fails with ErrNotImplemented.
	BoundaryConvective BoundaryPolicy = "convective"
)

// ParseBoundaryPolicy parses a case-insensitive policy name.
//
// An empty string yields BoundaryNeumann.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch p := BoundaryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return BoundaryNeumann, nil
	case BoundaryNeumann, BoundaryDirichlet, BoundaryConvective:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown boundary policy %q", ErrInvalidConfig, s)
	}
}

// String returns the policy name.
func (p BoundaryPolicy) String() string {
	return string(p)
}

// HeatSource is a fixed-position cell whose temperature is overwritten with
// Temperature before every distribute and after every collect.
type HeatSource struct {
	Row         int     `yaml:"row" json:"row"`
	Col         int     `yaml:"col" json:"col"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
}
