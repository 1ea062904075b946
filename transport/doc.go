// Package transport provides types.Transport implementations.
//
// A transport moves envelopes between the workers of one run through
// directed, bounded mailboxes (one per types.Address). Two implementations
// are provided:
//
//   - Channel: in-process buffered Go channels, the default for a single process
//   - NATS: core NATS subjects with msgpack-encoded envelopes, usable across processes
//
// Both register every mailbox up front in Prepare, so a Send can never race
// ahead of the matching subscription. Neither retries: any failure is
// reported to the caller, which aborts the run.
package transport
