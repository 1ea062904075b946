package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/arloliu/heatgrid/types"
)

// DefaultSubjectPrefix is the subject prefix used when none is configured.
const DefaultSubjectPrefix = "heatgrid"

// natsMailboxCapacity bounds the per-subscription channel. NATS drops
// messages for slow consumers once the channel is full, so it is sized
// above the single in-flight envelope the schedule allows.
const natsMailboxCapacity = 8

// NATS is a transport that maps each mailbox to a core NATS subject:
//
//	<prefix>.<kind>.<from>.<to>
//
// Envelopes are encoded with msgpack.
type NATS struct {
	conn      *nats.Conn
	prefix    string
	mailboxes *xsync.Map[types.Address, *natsMailbox]
	closed    atomic.Bool
}

type natsMailbox struct {
	sub *nats.Subscription
	ch  chan *nats.Msg
}

var _ types.Transport = (*NATS)(nil)

// NewNATS creates a NATS transport on an existing connection.
//
// Parameters:
//   - conn: Connected NATS client (owned by the caller)
//   - prefix: Subject prefix isolating this run (DefaultSubjectPrefix if empty)
//
// Returns:
//   - *NATS: Transport instance
//   - error: types.ErrInvalidConfig if conn is nil or prefix contains wildcards
func NewNATS(conn *nats.Conn, prefix string) (*NATS, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: NATS connection is required", types.ErrInvalidConfig)
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if strings.ContainsAny(prefix, "*> ") {
		return nil, fmt.Errorf("%w: invalid subject prefix %q", types.ErrInvalidConfig, prefix)
	}

	return &NATS{
		conn:      conn,
		prefix:    prefix,
		mailboxes: xsync.NewMap[types.Address, *natsMailbox](),
	}, nil
}

// Subject returns the NATS subject for addr.
func (n *NATS) Subject(addr types.Address) string {
	return n.prefix + "." + addr.String()
}

// Prepare subscribes to every mailbox subject and flushes so the server has
// registered all interest before the first publish. A ctx without a deadline
// is bounded by the connection's dial timeout for the flush.
func (n *NATS) Prepare(ctx context.Context, addrs []types.Address) error {
	if n.closed.Load() {
		return types.ErrTransportClosed
	}

	for _, addr := range addrs {
		if _, ok := n.mailboxes.Load(addr); ok {
			continue
		}

		ch := make(chan *nats.Msg, natsMailboxCapacity)
		sub, err := n.conn.ChanSubscribe(n.Subject(addr), ch)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", n.Subject(addr), err)
		}
		n.mailboxes.Store(addr, &natsMailbox{sub: sub, ch: ch})
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := n.conn.Opts.Timeout
		if timeout <= 0 {
			timeout = nats.DefaultTimeout
		}

		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush subscriptions: %w", err)
	}

	return nil
}

// Send encodes env and publishes it to its mailbox subject.
func (n *NATS) Send(_ /* ctx */ context.Context, env types.Envelope) error {
	if n.closed.Load() {
		return fmt.Errorf("send to %s: %w", env.Address(), types.ErrTransportClosed)
	}
	if _, ok := n.mailboxes.Load(env.Address()); !ok {
		return fmt.Errorf("send to %s: %w", env.Address(), types.ErrUnknownMailbox)
	}

	data, err := msgpack.Marshal(&env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Address(), err)
	}
	if err := n.conn.Publish(n.Subject(env.Address()), data); err != nil {
		return fmt.Errorf("publish %s: %w", n.Subject(env.Address()), err)
	}

	return nil
}

// Receive waits for the next message on addr's subject and decodes it.
func (n *NATS) Receive(ctx context.Context, addr types.Address) (types.Envelope, error) {
	mb, ok := n.mailboxes.Load(addr)
	if !ok {
		return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, types.ErrUnknownMailbox)
	}

	select {
	case msg, open := <-mb.ch:
		if !open || msg == nil {
			return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, types.ErrTransportClosed)
		}

		var env types.Envelope
		if err := msgpack.Unmarshal(msg.Data, &env); err != nil {
			return types.Envelope{}, fmt.Errorf("decode %s: %w", addr, err)
		}

		return env, nil
	case <-ctx.Done():
		return types.Envelope{}, fmt.Errorf("receive from %s: %w", addr, ctx.Err())
	}
}

// Close unsubscribes every mailbox. The connection itself stays open.
func (n *NATS) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	n.mailboxes.Range(func(addr types.Address, mb *natsMailbox) bool {
		if err := mb.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", addr, err))
		}
		n.mailboxes.Delete(addr)

		return true
	})

	return errors.Join(errs...)
}

// IsConnectivityError checks if an error is caused by NATS connectivity issues.
//
// This includes NATS timeouts, missing servers, disconnections and closed
// connections. The simulator still treats these as fatal; the classification
// only sharpens the error that is logged.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates a connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}
