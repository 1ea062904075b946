// Package halo implements the ghost-row exchange between row-adjacent workers.
//
// For worker i of W:
//
//	i > 0:   send first row to i-1, receive upper halo from i-1
//	i < W-1: send last row to i+1,  receive lower halo from i+1
//
// All applicable sends and receives are issued concurrently and joined
// before Exchange returns, so two neighbours that both send first can never
// deadlock. Received rows are validated against the expected iteration,
// sender and width; any mismatch or transport fault is a communication
// failure and is never retried.
package halo
