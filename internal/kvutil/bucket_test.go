package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	heattest "github.com/arloliu/heatgrid/testing"
)

func TestEnsureBucket_ConcurrentCreate(t *testing.T) {
	_, nc := heattest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	const callers = 5
	cfg := jetstream.KeyValueConfig{Bucket: "frames-concurrent", Storage: jetstream.MemoryStorage}

	var wg sync.WaitGroup
	kvs := make([]jetstream.KeyValue, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kvs[i], errs[i] = EnsureBucket(ctx, js, cfg, 0)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i], "caller %d", i)
		require.Equal(t, "frames-concurrent", kvs[i].Bucket())
	}
}

func TestEnsureBucket_OpensExisting(t *testing.T) {
	_, nc := heattest.StartEmbeddedNATS(t)
	existing := heattest.CreateJetStreamKV(t, nc, "frames-existing")
	_, err := existing.Put(t.Context(), "k", []byte("v"))
	require.NoError(t, err)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kv, err := EnsureBucket(t.Context(), js, jetstream.KeyValueConfig{Bucket: "frames-existing"}, 1)
	require.NoError(t, err)

	entry, err := kv.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), entry.Value())
}

func TestEnsureBucket_CancelledContext(t *testing.T) {
	_, nc := heattest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "frames-cancelled"}, 3)
	require.Error(t, err)
}

func TestPutGet_RoundTrip(t *testing.T) {
	_, nc := heattest.StartEmbeddedNATS(t)
	kv := heattest.CreateJetStreamKV(t, nc, "frames-roundtrip")

	type payload struct {
		Iteration int    `msgpack:"i"`
		Data      []byte `msgpack:"d"`
	}

	rev, err := Put(t.Context(), kv, "frame.000003", payload{Iteration: 3, Data: []byte{0, 128, 255}})
	require.NoError(t, err)
	require.Positive(t, rev)

	got, err := Get[payload](t.Context(), kv, "frame.000003")
	require.NoError(t, err)
	require.Equal(t, 3, got.Iteration)
	require.Equal(t, []byte{0, 128, 255}, got.Data)

	_, err = Get[payload](t.Context(), kv, "frame.999999")
	require.ErrorIs(t, err, jetstream.ErrKeyNotFound)
}
