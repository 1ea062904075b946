// Package main is the heatgrid command-line tool.
//
// Usage:
//
//	heatgrid [flags] [rows cols interval_ms steps]
//
// Configuration is layered: built-in defaults, then the YAML file given by
// -config, then HEATGRID_* environment variables, then flags and positional
// arguments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/heatgrid"
	"github.com/arloliu/heatgrid/internal/logging"
	"github.com/arloliu/heatgrid/internal/metrics"
	"github.com/arloliu/heatgrid/render"
	"github.com/arloliu/heatgrid/snapshot"
	"github.com/arloliu/heatgrid/transport"
	"github.com/arloliu/heatgrid/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "heatgrid: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

// cliFlags holds the command-line flags that are not part of heatgrid.Config.
type cliFlags struct {
	configPath   string
	workers      int
	boundary     string
	transport    string
	natsURL      string
	embeddedNATS bool
	renderMode   string
	play         bool
	frameDelay   time.Duration
	metricsAddr  string
	logLevel     string
	logFormat    string
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, *flag.FlagSet, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("heatgrid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: heatgrid [flags] [rows cols interval_ms steps]")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.configPath, "config", "", "Path to a YAML configuration file")
	fs.IntVar(&f.workers, "workers", 0, "Number of workers (row blocks)")
	fs.StringVar(&f.boundary, "boundary", "", "Boundary condition: neumann or dirichlet")
	fs.StringVar(&f.transport, "transport", "", "Worker transport: channel or nats")
	fs.StringVar(&f.natsURL, "nats-url", "", "NATS server URL for the nats transport")
	fs.BoolVar(&f.embeddedNATS, "embedded-nats", false, "Start an in-process NATS server for the nats transport")
	fs.StringVar(&f.renderMode, "render", "text", "Snapshot output: text, glyph or none")
	fs.BoolVar(&f.play, "play", false, "Replay snapshots as a live glyph animation until interrupted")
	fs.DurationVar(&f.frameDelay, "frame-delay", render.DefaultFrameDelay, "Minimum delay between frames with -play")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	switch f.renderMode {
	case "text", "glyph", "none":
	default:
		return nil, nil, fmt.Errorf("%w: unknown render mode %q", heatgrid.ErrInvalidConfig, f.renderMode)
	}

	return f, fs, nil
}

// loadConfig layers defaults, YAML, environment, flags and positional arguments.
func loadConfig(f *cliFlags, fs *flag.FlagSet) (heatgrid.Config, error) {
	cfg := heatgrid.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = heatgrid.LoadConfig(f.configPath); err != nil {
			return cfg, err
		}
	}

	if err := heatgrid.LoadEnv(&cfg); err != nil {
		return cfg, err
	}

	var flagErr error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "workers":
			cfg.Workers = f.workers
		case "boundary":
			policy, err := types.ParseBoundaryPolicy(f.boundary)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Boundary = policy
		case "transport":
			cfg.Transport.Kind = heatgrid.TransportKind(f.transport)
		case "nats-url":
			cfg.Transport.NATSURL = f.natsURL
		}
	})
	if flagErr != nil {
		return cfg, flagErr
	}

	if f.embeddedNATS {
		cfg.Transport.Kind = heatgrid.TransportNATS
	}

	if err := cfg.ApplyArgs(fs.Args()); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f, fs)
	if err != nil {
		return err
	}

	logger := logging.New(f.logLevel, f.logFormat, stderr).With("transport", string(cfg.Transport.Kind))
	opts := []heatgrid.Option{heatgrid.WithLogger(logger)}

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, heatgrid.WithMetrics(metrics.NewPrometheus(reg, "heatgrid")))

		srv := startMetricsServer(f.metricsAddr, reg, logger)
		defer shutdownMetricsServer(srv, logger)
	}

	if cfg.Transport.Kind == heatgrid.TransportNATS {
		natsOpts, cleanup, err := setupNATS(ctx, &cfg, f.embeddedNATS, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		opts = append(opts, natsOpts...)
	}

	sim, err := heatgrid.NewSimulator(&cfg, opts...)
	if err != nil {
		return err
	}

	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	if err := output(ctx, f, result, stdout); err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "Total time taken: %s\n", result.Elapsed)

	return err
}

func output(ctx context.Context, f *cliFlags, result heatgrid.Result, stdout io.Writer) error {
	switch f.renderMode {
	case "text":
		if err := render.WriteText(stdout, result.Frames); err != nil {
			return err
		}
	case "glyph":
		for _, frame := range result.Frames {
			if _, err := fmt.Fprintf(stdout, "Iteration %d:\n", frame.Iteration); err != nil {
				return err
			}
			if err := render.WriteGlyphs(stdout, frame); err != nil {
				return err
			}
		}
	}

	if f.play {
		player := render.Player{Delay: f.frameDelay}
		if err := player.Play(ctx, result.Frames, render.Terminal(stdout)); err != nil {
			return err
		}
	}

	return nil
}

// setupNATS connects to (or starts) a NATS server and returns the transport
// and, when a bucket is configured, the snapshot sink options.
func setupNATS(ctx context.Context, cfg *heatgrid.Config, embedded bool, logger heatgrid.Logger) ([]heatgrid.Option, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	url := cfg.Transport.NATSURL
	if embedded {
		ns, stopServer, err := startEmbeddedNATS()
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, stopServer)
		url = ns.ClientURL()
		logger.Info("embedded NATS server started", "url", url)
	}
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Name("heatgrid"), nats.Timeout(5*time.Second))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: connect to NATS at %s: %w", heatgrid.ErrCommunication, url, err)
	}
	cleanups = append(cleanups, nc.Close)

	tr, err := transport.NewNATS(nc, cfg.Transport.SubjectPrefix)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		if err := tr.Close(); err != nil {
			logger.Warn("failed to close NATS transport", "error", err)
		}
	})
	opts := []heatgrid.Option{heatgrid.WithTransport(tr)}

	if cfg.Transport.SnapshotBucket != "" {
		js, err := jetstream.New(nc)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init JetStream: %w", err)
		}

		sink, err := snapshot.NewKVSink(ctx, js, cfg.Transport.SnapshotBucket)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open snapshot bucket: %w", err)
		}
		opts = append(opts, heatgrid.WithSnapshotSink(sink))
	}

	return opts, cleanup, nil
}

// startEmbeddedNATS starts an in-process JetStream-enabled server on a
// random port. The returned stop function shuts it down and removes its
// storage directory.
func startEmbeddedNATS() (*server.Server, func(), error) {
	storeDir, err := os.MkdirTemp("", "heatgrid-nats-")
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS store directory: %w", err)
	}

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		_ = os.RemoveAll(storeDir)
		return nil, nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()

	stopServer := func() {
		ns.Shutdown()
		ns.WaitForShutdown()
		_ = os.RemoveAll(storeDir)
	}

	if !ns.ReadyForConnections(10 * time.Second) {
		stopServer()
		return nil, nil, errors.New("embedded NATS server not ready within 10s")
	}

	return ns, stopServer, nil
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger heatgrid.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return srv
}

func shutdownMetricsServer(srv *http.Server, logger heatgrid.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}
