package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid"
)

func TestRun_TextOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(t.Context(), []string{"-log-level", "error", "4", "3", "100", "2"}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	require.Equal(t, 3, strings.Count(out, "Iteration "), "steps+1 snapshots")
	require.True(t, strings.HasPrefix(out, "Iteration 0:\n.... .... ....\n.... "+" 255 ....\n"))
	require.Contains(t, out, "Iteration 2:")
	require.Contains(t, out, "Total time taken: ")
}

func TestRun_GlyphOutputWithWorkers(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(t.Context(), []string{"-render", "glyph", "-workers", "3", "-log-level", "error", "6", "6", "100", "4"}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	require.Equal(t, 5, strings.Count(out, "Iteration "))
	require.Contains(t, out, "Iteration 0:\n......\n.#....\n")
}

func TestRun_RenderNone(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(t.Context(), []string{"-render", "none", "-log-format", "json", "5", "5", "100", "3"}, &stdout, &stderr)
	require.NoError(t, err)

	require.NotContains(t, stdout.String(), "Iteration")
	require.Contains(t, stdout.String(), "Total time taken: ")
	require.Contains(t, stderr.String(), `"msg":"simulation complete"`)
	require.Contains(t, stderr.String(), `"transport":"channel"`)
}

func TestRun_EmbeddedNATS(t *testing.T) {
	var stdout, stderr bytes.Buffer
	t.Setenv("HEATGRID_TRANSPORT_SNAPSHOT_BUCKET", "cli-frames")

	err := run(t.Context(), []string{"-embedded-nats", "-workers", "2", "-render", "none", "-log-level", "error", "6", "4", "100", "3"}, &stdout, &stderr)
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "Total time taken: ")
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := map[string][]string{
		"non-numeric rows":  {"ten"},
		"zero steps":        {"10", "10", "100", "0"},
		"empty argument":    {""},
		"too many workers":  {"-workers", "20", "5"},
		"unknown boundary":  {"-boundary", "periodic"},
		"unknown render":    {"-render", "svg"},
		"unknown transport": {"-transport", "grpc"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(t.Context(), args, &stdout, &stderr)
			require.ErrorIs(t, err, heatgrid.ErrInvalidConfig)
			require.Empty(t, stdout.String())
		})
	}
}

func TestRun_ConvectiveNotImplemented(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(t.Context(), []string{"-boundary", "convective"}, &stdout, &stderr)
	require.ErrorIs(t, err, heatgrid.ErrNotImplemented)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: 30\ncolumns: 30\nworkers: 2\nsteps: 50\n"), 0o600))

	t.Setenv("HEATGRID_COLUMNS", "40")
	t.Setenv("HEATGRID_WORKERS", "3")

	var stderr bytes.Buffer
	f, fs, err := parseFlags([]string{"-config", path, "-workers", "5", "-boundary", "dirichlet", "60"}, &stderr)
	require.NoError(t, err)

	cfg, err := loadConfig(f, fs)
	require.NoError(t, err)

	require.Equal(t, 60, cfg.Rows, "positional argument wins over YAML")
	require.Equal(t, 40, cfg.Columns, "environment wins over YAML")
	require.Equal(t, 5, cfg.Workers, "flag wins over environment")
	require.Equal(t, 50, cfg.Steps, "YAML wins over defaults")
	require.Equal(t, 100, cfg.StepIntervalMS, "default kept")
	require.Equal(t, heatgrid.BoundaryDirichlet, cfg.Boundary)
}
