package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/heatgrid/internal/kvutil"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "heatgrid-frames"

const keyPrefix = "frame."

// FrameKey returns the KV key of the frame for iteration.
// Keys are zero-padded so lexical order matches iteration order.
func FrameKey(iteration int) string {
	return fmt.Sprintf("%s%06d", keyPrefix, iteration)
}

// KVSink stores frames in a JetStream KeyValue bucket.
type KVSink struct {
	kv jetstream.KeyValue
}

var (
	_ Sink     = (*KVSink)(nil)
	_ Resetter = (*KVSink)(nil)
)

// NewKVSink opens (or creates) bucket on js and returns a sink writing to it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Bucket name; DefaultBucket when empty
//
// Returns:
//   - *KVSink: Sink ready for Write
//   - error: Bucket creation failure
func NewKVSink(ctx context.Context, js jetstream.JetStream, bucket string) (*KVSink, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "heatgrid snapshot frames",
		History:     1,
	}, 0)
	if err != nil {
		return nil, err
	}

	return NewKVSinkFromBucket(kv), nil
}

// NewKVSinkFromBucket wraps an existing bucket.
func NewKVSinkFromBucket(kv jetstream.KeyValue) *KVSink {
	return &KVSink{kv: kv}
}

// Write stores f under FrameKey(f.Iteration).
func (s *KVSink) Write(ctx context.Context, f Frame) error {
	_, err := kvutil.Put(ctx, s.kv, FrameKey(f.Iteration), f)

	return err
}

// Reset purges every frame in the bucket. A Recorder calls it before the
// first frame of a run so readers never mix frames from different runs.
func (s *KVSink) Reset(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list frames: %w", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		if err := s.kv.Purge(ctx, key); err != nil {
			return fmt.Errorf("purge %s: %w", key, err)
		}
	}

	return nil
}

// Load returns the stored frame for iteration after verifying its checksum.
func (s *KVSink) Load(ctx context.Context, iteration int) (Frame, error) {
	f, err := kvutil.Get[Frame](ctx, s.kv, FrameKey(iteration))
	if err != nil {
		return Frame{}, err
	}

	if err := f.Verify(); err != nil {
		return Frame{}, err
	}

	return f, nil
}

// LoadAll returns every stored frame ordered by iteration.
func (s *KVSink) LoadAll(ctx context.Context) ([]Frame, error) {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}

	sort.Strings(keys)

	frames := make([]Frame, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		f, err := kvutil.Get[Frame](ctx, s.kv, key)
		if err != nil {
			return nil, err
		}
		if err := f.Verify(); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, nil
}

// Watch calls fn for every frame in the bucket, stored frames first and then
// new ones as they are written, until ctx ends or fn returns an error.
//
// Example:
//
//	err := sink.Watch(ctx, func(f snapshot.Frame) error {
//	    return render.WriteGlyphs(os.Stdout, f)
//	})
func (s *KVSink) Watch(ctx context.Context, fn func(Frame) error) error {
	w, err := s.kv.Watch(ctx, keyPrefix+">")
	if err != nil {
		return fmt.Errorf("watch frames: %w", err)
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-w.Updates():
			if !ok {
				return nil
			}
			// nil marks the end of the stored frames.
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			f, err := kvutil.Decode[Frame](entry)
			if err != nil {
				return err
			}
			if err := f.Verify(); err != nil {
				return err
			}
			if err := fn(f); err != nil {
				return err
			}
		}
	}
}
