package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid/types"
)

func TestChannel_SendReceive(t *testing.T) {
	ctx := t.Context()
	tr := NewChannel()
	addr := types.Address{Kind: types.KindHalo, From: 0, To: 1}
	require.NoError(t, tr.Prepare(ctx, []types.Address{addr}))

	row := []float64{1, 2, 3}
	require.NoError(t, tr.Send(ctx, types.Envelope{Kind: types.KindHalo, From: 0, To: 1, Iteration: 4, Rows: 1, Cols: 3, Cells: row}))

	row[0] = 99 // sender reuses its buffer

	env, err := tr.Receive(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, 4, env.Iteration)
	require.Equal(t, []float64{1, 2, 3}, env.Cells, "payload must be copied on send")
}

func TestChannel_SendDoesNotWaitForReceiver(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	tr := NewChannel()
	up := types.Address{Kind: types.KindHalo, From: 0, To: 1}
	down := types.Address{Kind: types.KindHalo, From: 1, To: 0}
	require.NoError(t, tr.Prepare(ctx, []types.Address{up, down}))

	// Both neighbours send before either receives.
	require.NoError(t, tr.Send(ctx, types.Envelope{Kind: types.KindHalo, From: 0, To: 1}))
	require.NoError(t, tr.Send(ctx, types.Envelope{Kind: types.KindHalo, From: 1, To: 0}))

	_, err := tr.Receive(ctx, up)
	require.NoError(t, err)
	_, err = tr.Receive(ctx, down)
	require.NoError(t, err)
}

func TestChannel_UnknownMailbox(t *testing.T) {
	tr := NewChannel()

	err := tr.Send(t.Context(), types.Envelope{Kind: types.KindBlock, From: 0, To: 3})
	require.ErrorIs(t, err, types.ErrUnknownMailbox)

	_, err = tr.Receive(t.Context(), types.Address{Kind: types.KindBlock, From: 0, To: 3})
	require.ErrorIs(t, err, types.ErrUnknownMailbox)
}

func TestChannel_ReceiveHonoursContext(t *testing.T) {
	tr := NewChannel()
	addr := types.Address{Kind: types.KindResult, From: 1, To: 0}
	require.NoError(t, tr.Prepare(t.Context(), []types.Address{addr}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Receive(ctx, addr)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_CloseUnblocksReceivers(t *testing.T) {
	tr := NewChannel()
	addr := types.Address{Kind: types.KindResult, From: 1, To: 0}
	require.NoError(t, tr.Prepare(t.Context(), []types.Address{addr}))

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.Receive(context.Background(), addr)
		errCh <- err
	}()

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, types.ErrTransportClosed)
	case <-time.After(time.Second):
		t.Fatal("receiver was not unblocked by Close")
	}

	require.ErrorIs(t, tr.Prepare(t.Context(), nil), types.ErrTransportClosed)
}

func TestChannel_FullMailboxBlocksUntilContextEnds(t *testing.T) {
	tr := NewChannel(WithCapacity(1))
	addr := types.Address{Kind: types.KindBlock, From: 0, To: 1}
	require.NoError(t, tr.Prepare(t.Context(), []types.Address{addr}))

	require.NoError(t, tr.Send(t.Context(), types.Envelope{Kind: types.KindBlock, From: 0, To: 1}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := tr.Send(ctx, types.Envelope{Kind: types.KindBlock, From: 0, To: 1})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
