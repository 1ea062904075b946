// Package stencil implements the explicit finite-difference heat update.
//
// The kernel is the 4-point von Neumann stencil:
//
//	new = cur + k*(left + right + up + down - 4*cur)
//	k   = diffusivity * (dt_ms/1000) / distance²
//
// Neighbour resolution is a pure function of the previous block, the halo rows
// and the boundary policy, so the kernel can be tested without any transport.
// Every pass reads the previous block and writes a fresh output block; no cell
// ever observes a value updated in the same pass. Updated values are clamped
// into [0, MaxTemp].
package stencil
