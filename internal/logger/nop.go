// Package logger holds the logger a Simulator falls back to when none is
// configured.
package logger

import "github.com/arloliu/heatgrid/types"

// Nop drops every record. Fatal does not exit.
type Nop struct{}

var _ types.Logger = Nop{}

// NewNop returns the silent logger NewSimulator installs by default.
func NewNop() Nop {
	return Nop{}
}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
func (Nop) Fatal(string, ...any) {}
