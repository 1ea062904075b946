// Package heatgrid provides a Go library for simulating 2D heat diffusion on a
// grid split across concurrent workers.
//
// The grid is decomposed row-wise into contiguous blocks. Every iteration the
// coordinator distributes blocks, neighbouring workers swap their edge rows
// (halo exchange), each worker applies an explicit 4-point stencil to its
// block and the coordinator collects the results and records a quantized
// snapshot.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/arloliu/heatgrid"
//
//	cfg := heatgrid.DefaultConfig()
//	cfg.Workers = 4
//
//	sim, err := heatgrid.NewSimulator(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sim.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = render.WriteText(os.Stdout, result.Frames)
//
// # Architecture
//
// The coordinator moves through one state per phase:
//
//	Idle → Distributing → Exchanging → Updating → Collecting → Recording → ... → Done
//
// Failed is entered when any worker, transport or sink fails; the run never
// retries. Workers communicate only through a Transport: the default
// in-process channel transport, or transport.NATS for core NATS subjects.
//
// # Advanced Usage
//
// Distributed mailboxes over NATS with frames mirrored to JetStream KV:
//
//	tr, _ := transport.NewNATS(nc, "heatgrid.run42")
//	js, _ := jetstream.New(nc)
//	sink, _ := snapshot.NewKVSink(ctx, js, "heatgrid-frames")
//
//	sim, err := heatgrid.NewSimulator(&cfg,
//	    heatgrid.WithTransport(tr),
//	    heatgrid.WithSnapshotSink(sink),
//	    heatgrid.WithLogger(logger),
//	)
//
// For more examples, see the cmd/heatgrid directory.
package heatgrid
