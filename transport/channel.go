package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/heatgrid/types"
)

// DefaultMailboxCapacity is the number of envelopes a mailbox buffers.
//
// The bulk-synchronous schedule never has more than one envelope in flight
// per mailbox, so a single slot lets every send complete without waiting
// for the receiver.
const DefaultMailboxCapacity = 1

// Channel is an in-process transport backed by buffered channels.
type Channel struct {
	capacity  int
	mailboxes *xsync.Map[types.Address, chan types.Envelope]
	closed    chan struct{}
	closeOnce sync.Once
}

var _ types.Transport = (*Channel)(nil)

// ChannelOption configures a Channel transport.
type ChannelOption func(*Channel)

// WithCapacity overrides the per-mailbox buffer size.
func WithCapacity(n int) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewChannel creates an in-process transport.
//
// Example:
//
//	tr := transport.NewChannel()
//	sim, err := heatgrid.NewSimulator(&cfg, heatgrid.WithTransport(tr))
func NewChannel(opts ...ChannelOption) *Channel {
	c := &Channel{
		capacity:  DefaultMailboxCapacity,
		mailboxes: xsync.NewMap[types.Address, chan types.Envelope](),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Prepare creates a buffered channel for every address.
func (c *Channel) Prepare(_ /* ctx */ context.Context, addrs []types.Address) error {
	select {
	case <-c.closed:
		return types.ErrTransportClosed
	default:
	}

	for _, addr := range addrs {
		c.mailboxes.LoadOrStore(addr, make(chan types.Envelope, c.capacity))
	}

	return nil
}

// Send copies the payload and places the envelope in its mailbox.
func (c *Channel) Send(ctx context.Context, env types.Envelope) error {
	ch, ok := c.mailboxes.Load(env.Address())
	if !ok {
		return fmt.Errorf("send to %s: %w", env.Address(), types.ErrUnknownMailbox)
	}

	cells := make([]float64, len(env.Cells))
	copy(cells, env.Cells)
	env.Cells = cells

	select {
	case ch <- env:
		return nil
	case <-c.closed:
		return fmt.Errorf("send to %s: %w", env.Address(), types.ErrTransportClosed)
	case <-ctx.Done():
		return fmt.Errorf("send to %s: %w", env.Address(), ctx.Err())
	}
}

// Receive waits for the next envelope in addr.
func (c *Channel) Receive(ctx context.Context, addr types.Address) (types.Envelope, error) {
	ch, ok := c.mailboxes.Load(addr)
	if !ok {
		return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, types.ErrUnknownMailbox)
	}

	select {
	case env := <-ch:
		return env, nil
	case <-c.closed:
		return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, types.ErrTransportClosed)
	case <-ctx.Done():
		return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, ctx.Err())
	}
}

// Close unblocks every pending Send and Receive. It is safe to call more than once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	return nil
}
