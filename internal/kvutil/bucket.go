// Package kvutil provides helpers for JetStream KeyValue buckets holding
// msgpack-encoded values.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultRetries is the attempt count used when EnsureBucket gets a non-positive value.
const DefaultRetries = 3

// EnsureBucket creates the KV bucket or opens it when it already exists.
//
// Two processes recording into the same bucket may race on creation; the
// loser sees jetstream.ErrBucketExists and opens the existing bucket. Other
// failures are retried with exponential backoff (10ms, 20ms, 40ms...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - cfg: Bucket configuration used on creation
//   - retries: Maximum attempts (DefaultRetries when <= 0)
//
// Returns:
//   - jetstream.KeyValue: The bucket handle
//   - error: Last failure after all attempts, or the context error
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "heatgrid-frames",
//	    Storage: jetstream.MemoryStorage,
//	}, 0)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig, retries int) (jetstream.KeyValue, error) {
	if retries <= 0 {
		retries = DefaultRetries
	}

	var lastErr error
	for attempt := range retries {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, openErr := js.KeyValue(ctx, cfg.Bucket)
			if openErr == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("open existing bucket: %w", openErr)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, ctx.Err())
		}

		if attempt < retries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by retries
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("ensure bucket %s after %d attempts: %w", cfg.Bucket, retries, lastErr)
}

// Put msgpack-encodes v and stores it under key.
//
// Returns:
//   - uint64: Revision assigned by the bucket
//   - error: Encoding or store failure
func Put[T any](ctx context.Context, kv jetstream.KeyValue, key string, v T) (uint64, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}

	rev, err := kv.Put(ctx, key, data)
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}

	return rev, nil
}

// Get loads key and msgpack-decodes it into a T.
//
// A missing key returns an error wrapping jetstream.ErrKeyNotFound.
func Get[T any](ctx context.Context, kv jetstream.KeyValue, key string) (T, error) {
	var v T

	entry, err := kv.Get(ctx, key)
	if err != nil {
		return v, fmt.Errorf("get %s: %w", key, err)
	}

	return Decode[T](entry)
}

// Decode msgpack-decodes a KV entry, as delivered by Get or a watcher.
func Decode[T any](entry jetstream.KeyValueEntry) (T, error) {
	var v T
	if err := msgpack.Unmarshal(entry.Value(), &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", entry.Key(), err)
	}

	return v, nil
}
