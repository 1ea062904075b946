// Package snapshot records quantized copies of the temperature grid.
//
// A Recorder owns the ordered, append-only list of frames for one run. Each
// Frame stores one byte per cell, row-major, scaled so that 0 maps to 0 and
// MaxTemp maps to 255, plus an xxh3 checksum of the bytes. Frames can also be
// mirrored to a Sink; KVSink stores them in a NATS JetStream KeyValue bucket
// so another process can replay a run.
package snapshot
