package heatgrid

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/heatgrid/stencil"
	"github.com/arloliu/heatgrid/types"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "HEATGRID_"

// TransportKind selects the message transport between workers.
type TransportKind string

const (
	// TransportChannel moves envelopes over in-process buffered channels.
	TransportChannel TransportKind = "channel"

	// TransportNATS moves envelopes over NATS core subjects.
	TransportNATS TransportKind = "nats"
)

// TransportConfig selects and configures the worker transport.
type TransportConfig struct {
	// Kind is "channel" (default) or "nats".
	Kind TransportKind `yaml:"kind" env:"KIND"`

	// NATSURL is the server URL used when Kind is "nats".
	NATSURL string `yaml:"natsUrl" env:"NATS_URL"`

	// SubjectPrefix is the first subject token of every mailbox.
	// Runs sharing a server need distinct prefixes.
	SubjectPrefix string `yaml:"subjectPrefix" env:"SUBJECT_PREFIX"`

	// SnapshotBucket, when set with the NATS transport, mirrors every frame
	// into this JetStream KV bucket.
	SnapshotBucket string `yaml:"snapshotBucket" env:"SNAPSHOT_BUCKET"`
}

// Config is the configuration for a Simulator.
//
// Durations accept standard Go duration strings like "500ms" or "5s".
type Config struct {
	// Rows is the number of grid rows.
	Rows int `yaml:"rows" env:"ROWS"`

	// Columns is the number of grid columns.
	Columns int `yaml:"columns" env:"COLUMNS"`

	// StepIntervalMS is the simulated time per iteration, in milliseconds.
	StepIntervalMS int `yaml:"stepIntervalMs" env:"STEP_INTERVAL_MS"`

	// Steps is the number of iterations to run.
	Steps int `yaml:"steps" env:"STEPS"`

	// Workers is the number of row blocks the grid is split into.
	// Must not exceed Rows.
	Workers int `yaml:"workers" env:"WORKERS"`

	// Diffusivity is the thermal diffusivity of the material.
	Diffusivity float64 `yaml:"diffusivity" env:"DIFFUSIVITY"`

	// GridDistance is the physical distance between two adjacent cells.
	GridDistance float64 `yaml:"gridDistance" env:"GRID_DISTANCE"`

	// MaxTemp is the upper clamp bound and the temperature quantized to 255.
	MaxTemp float64 `yaml:"maxTemp" env:"MAX_TEMP"`

	// Boundary is the boundary condition: "neumann" or "dirichlet".
	Boundary types.BoundaryPolicy `yaml:"boundary" env:"BOUNDARY"`

	// Sources are fixed-temperature cells re-applied every iteration.
	// A nil list gets the default source; an explicit empty list disables sources.
	Sources []types.HeatSource `yaml:"sources"`

	// ExchangeTimeout bounds every distribute, halo exchange and collect wait.
	ExchangeTimeout time.Duration `yaml:"exchangeTimeout" env:"EXCHANGE_TIMEOUT"`

	// Transport selects how workers talk to each other.
	Transport TransportConfig `yaml:"transport" envPrefix:"TRANSPORT_"`
}

// DefaultConfig returns a Config with the defaults of the command-line tool.
//
// Returns:
//   - Config: 10x10 grid, 100ms step, 100 iterations, one source at (1,1)
func DefaultConfig() Config {
	return Config{
		Rows:           10,
		Columns:        10,
		StepIntervalMS: 100,
		Steps:          100,
		Workers:        1,
		Diffusivity:    0.1,
		GridDistance:   1.0,
		MaxTemp:        1000,
		Boundary:       types.BoundaryNeumann,
		Sources: []types.HeatSource{
			{Row: 1, Col: 1, Temperature: 1000},
		},
		ExchangeTimeout: 5 * time.Second,
		Transport: TransportConfig{
			Kind:           TransportChannel,
			SubjectPrefix:  "heatgrid",
			SnapshotBucket: "",
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Rows == 0 {
		cfg.Rows = defaults.Rows
	}
	if cfg.Columns == 0 {
		cfg.Columns = defaults.Columns
	}
	if cfg.StepIntervalMS == 0 {
		cfg.StepIntervalMS = defaults.StepIntervalMS
	}
	if cfg.Steps == 0 {
		cfg.Steps = defaults.Steps
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Diffusivity == 0 {
		cfg.Diffusivity = defaults.Diffusivity
	}
	if cfg.GridDistance == 0 {
		cfg.GridDistance = defaults.GridDistance
	}
	if cfg.MaxTemp == 0 {
		cfg.MaxTemp = defaults.MaxTemp
	}
	if cfg.Boundary == "" {
		cfg.Boundary = defaults.Boundary
	}
	if cfg.Sources == nil {
		cfg.Sources = defaults.Sources
	}
	if cfg.ExchangeTimeout == 0 {
		cfg.ExchangeTimeout = defaults.ExchangeTimeout
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = defaults.Transport.Kind
	}
	if cfg.Transport.SubjectPrefix == "" {
		cfg.Transport.SubjectPrefix = defaults.Transport.SubjectPrefix
	}
	// SnapshotBucket stays empty unless set: frames are mirrored only on request.
}

// Coefficient returns the stencil coefficient k = diffusivity*dt/distance².
func (cfg *Config) Coefficient() float64 {
	return stencil.Coefficient(cfg.Diffusivity, cfg.StepIntervalMS, cfg.GridDistance)
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - Rows, Columns, StepIntervalMS, Steps > 0
//   - 1 <= Workers <= Rows (every worker owns at least one row)
//   - Diffusivity, GridDistance, MaxTemp > 0
//   - Coefficient <= 0.25 (explicit scheme stability limit)
//   - Boundary is neumann or dirichlet; convective returns ErrNotImplemented
//   - Every source lies inside the grid with 0 <= Temperature <= MaxTemp
//   - ExchangeTimeout > 0, Transport.Kind is channel or nats
//
// Returns:
//   - error: Wrapped ErrInvalidConfig (or ErrNotImplemented), nil if valid
func (cfg *Config) Validate() error {
	dims := []struct {
		name  string
		value int
	}{
		{"rows", cfg.Rows},
		{"columns", cfg.Columns},
		{"step interval", cfg.StepIntervalMS},
		{"steps", cfg.Steps},
		{"workers", cfg.Workers},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %d", types.ErrInvalidConfig, d.name, d.value)
		}
	}

	if cfg.Workers > cfg.Rows {
		return fmt.Errorf("%w: workers (%d) must not exceed rows (%d)", types.ErrInvalidConfig, cfg.Workers, cfg.Rows)
	}

	if cfg.Diffusivity <= 0 || cfg.GridDistance <= 0 || cfg.MaxTemp <= 0 {
		return fmt.Errorf("%w: diffusivity (%v), grid distance (%v) and max temperature (%v) must be > 0",
			types.ErrInvalidConfig, cfg.Diffusivity, cfg.GridDistance, cfg.MaxTemp)
	}

	if k := cfg.Coefficient(); k > stencil.MaxStableCoefficient {
		return fmt.Errorf("%w: coefficient %.4f exceeds stability limit %.2f; reduce diffusivity or step interval",
			types.ErrInvalidConfig, k, stencil.MaxStableCoefficient)
	}

	policy, err := types.ParseBoundaryPolicy(string(cfg.Boundary))
	if err != nil {
		return err
	}
	if _, err := stencil.BoundaryFor(policy); err != nil {
		return err
	}

	for i, src := range cfg.Sources {
		if src.Row < 0 || src.Row >= cfg.Rows || src.Col < 0 || src.Col >= cfg.Columns {
			return fmt.Errorf("%w: source %d at (%d,%d) is outside the %dx%d grid",
				types.ErrInvalidConfig, i, src.Row, src.Col, cfg.Rows, cfg.Columns)
		}
		if src.Temperature < 0 || src.Temperature > cfg.MaxTemp {
			return fmt.Errorf("%w: source %d temperature %v outside [0, %v]",
				types.ErrInvalidConfig, i, src.Temperature, cfg.MaxTemp)
		}
	}

	if cfg.ExchangeTimeout <= 0 {
		return fmt.Errorf("%w: exchange timeout must be > 0, got %v", types.ErrInvalidConfig, cfg.ExchangeTimeout)
	}

	switch cfg.Transport.Kind {
	case TransportChannel, TransportNATS:
	default:
		return fmt.Errorf("%w: unknown transport %q", types.ErrInvalidConfig, cfg.Transport.Kind)
	}

	if strings.ContainsAny(cfg.Transport.SubjectPrefix, "*> ") {
		return fmt.Errorf("%w: subject prefix %q contains wildcard or space", types.ErrInvalidConfig, cfg.Transport.SubjectPrefix)
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but questionable values.
//
// This is called after Validate() in NewSimulator() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if k := cfg.Coefficient(); k > 0.2 {
		logger.Warn("coefficient is close to the stability limit, expect oscillation near sources",
			"coefficient", k,
			"limit", stencil.MaxStableCoefficient,
		)
	}

	if cfg.Transport.Kind == TransportChannel && cfg.Workers > runtime.NumCPU() {
		logger.Warn("more workers than CPUs, goroutines will time-share",
			"workers", cfg.Workers,
			"cpus", runtime.NumCPU(),
		)
	}

	const frameMemoryWarn = 256 << 20
	if frames := int64(cfg.Rows) * int64(cfg.Columns) * int64(cfg.Steps+1); frames > frameMemoryWarn {
		logger.Warn("snapshot history is large",
			"bytes", frames,
			"recommended", "fewer steps or a smaller grid",
		)
	}

	if len(cfg.Sources) == 0 {
		logger.Warn("no heat sources configured, the grid stays at zero")
	}
}

// LoadConfig loads configuration from a YAML file on top of DefaultConfig.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - Config: Loaded configuration (not yet validated)
//   - error: Wrapped ErrInvalidConfig if the file cannot be read or parsed
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: read config file: %w", types.ErrInvalidConfig, err)
	}

	// Sources replace the defaults instead of merging into them.
	cfg.Sources = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse config file: %w", types.ErrInvalidConfig, err)
	}
	SetDefaults(&cfg)

	return cfg, nil
}

// LoadEnv overrides cfg with HEATGRID_* environment variables.
//
// Unset variables leave the current values untouched, so LoadEnv layers on
// top of DefaultConfig or LoadConfig. Heat sources are not read from the
// environment.
//
// Example:
//
//	HEATGRID_ROWS=64 HEATGRID_TRANSPORT_KIND=nats heatgrid
func LoadEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: parse env: %w", types.ErrInvalidConfig, err)
	}

	return nil
}

// ApplyArgs applies the positional arguments "rows cols interval_ms steps".
//
// Missing trailing arguments keep their current values. Every given argument
// must be a positive integer.
//
// Returns:
//   - error: Wrapped ErrInvalidConfig for extra, empty, non-numeric or non-positive arguments
func (cfg *Config) ApplyArgs(args []string) error {
	targets := []struct {
		name string
		dst  *int
	}{
		{"rows", &cfg.Rows},
		{"cols", &cfg.Columns},
		{"interval_ms", &cfg.StepIntervalMS},
		{"steps", &cfg.Steps},
	}

	if len(args) > len(targets) {
		return fmt.Errorf("%w: expected at most %d arguments (rows cols interval_ms steps), got %d",
			types.ErrInvalidConfig, len(targets), len(args))
	}

	for i, arg := range args {
		v, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", types.ErrInvalidConfig, targets[i].name, arg)
		}
		if v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %d", types.ErrInvalidConfig, targets[i].name, v)
		}
		*targets[i].dst = v
	}

	return nil
}

// TestConfig returns a small configuration for fast test execution.
//
// Returns:
//   - Config: 10x10 grid, 10 steps, short exchange timeout
//
// Example:
//
//	cfg := heatgrid.TestConfig()
//	cfg.Workers = 3
//	sim, err := heatgrid.NewSimulator(&cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Steps = 10
	cfg.ExchangeTimeout = 2 * time.Second

	return cfg
}
