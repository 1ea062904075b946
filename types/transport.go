package types

import (
	"context"
	"fmt"
)

// EnvelopeKind identifies which collective an Envelope belongs to.
type EnvelopeKind string

const (
	// KindBlock carries a local block from the coordinator to a worker (distribute).
	KindBlock EnvelopeKind = "block"

	// KindHalo carries a single boundary row between adjacent workers.
	KindHalo EnvelopeKind = "halo"

	// KindResult carries an updated local block from a worker to the coordinator (collect).
	KindResult EnvelopeKind = "result"
)

// Address names a directed mailbox: messages of Kind sent by worker From to worker To.
type Address struct {
	Kind EnvelopeKind
	From int
	To   int
}

// String returns the address in "kind.from.to" form, which is also the
// suffix of the NATS subject used for the mailbox.
func (a Address) String() string {
	return fmt.Sprintf("%s.%d.%d", a.Kind, a.From, a.To)
}

// Envelope is the unit of data moved by a Transport.
//
// Cells is always a copy owned by the envelope; senders must not retain it.
type Envelope struct {
	Kind      EnvelopeKind `msgpack:"k"`
	Iteration int          `msgpack:"i"`
	From      int          `msgpack:"f"`
	To        int          `msgpack:"t"`
	Rows      int          `msgpack:"r"`
	Cols      int          `msgpack:"c"`
	Cells     []float64    `msgpack:"v"`
}

// Address returns the mailbox this envelope is delivered to.
func (e Envelope) Address() Address {
	return Address{Kind: e.Kind, From: e.From, To: e.To}
}

// Grid returns the payload as a Grid. The grid aliases Cells.
func (e Envelope) Grid() Grid {
	return Grid{Rows: e.Rows, Cols: e.Cols, Cells: e.Cells}
}

// Transport moves envelopes between workers of a single run.
//
// Each directed Address is a bounded mailbox: Send returns once the envelope
// is accepted, without waiting for the receiver. Implementations must be safe
// for concurrent use by all workers.
type Transport interface {
	// Prepare registers every mailbox used by the run. It must be called once
	// before any Send or Receive so no early message can be lost.
	Prepare(ctx context.Context, addrs []Address) error

	// Send delivers env to the mailbox env.Address().
	Send(ctx context.Context, env Envelope) error

	// Receive blocks until an envelope arrives in addr or ctx ends.
	Receive(ctx context.Context, addr Address) (Envelope, error)

	// Close releases all mailboxes. Pending receivers fail.
	Close() error
}
