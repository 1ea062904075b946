package testing

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/arloliu/heatgrid/types"
)

// ErrInjected is the error returned by FaultyTransport when a fault fires.
var ErrInjected = errors.New("injected transport fault")

// FaultyTransport wraps a transport and fails sends matching a predicate.
//
// It is used to verify that a single failed halo, distribute or collect
// aborts the whole run.
type FaultyTransport struct {
	types.Transport

	fail  func(env types.Envelope) bool
	fired atomic.Int32
}

var _ types.Transport = (*FaultyTransport)(nil)

// NewFaultyTransport wraps inner. Every Send for which fail returns true
// returns ErrInjected instead of delivering the envelope.
func NewFaultyTransport(inner types.Transport, fail func(env types.Envelope) bool) *FaultyTransport {
	return &FaultyTransport{Transport: inner, fail: fail}
}

// Send delivers env unless the fault predicate matches.
func (f *FaultyTransport) Send(ctx context.Context, env types.Envelope) error {
	if f.fail != nil && f.fail(env) {
		f.fired.Add(1)
		return ErrInjected
	}

	return f.Transport.Send(ctx, env)
}

// Fired returns how many sends were failed.
func (f *FaultyTransport) Fired() int {
	return int(f.fired.Load())
}
