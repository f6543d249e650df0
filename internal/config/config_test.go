package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/amosa/internal/optimization"
	"github.com/copyleftdev/amosa/internal/optimization/amosa"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Optimization.WorkerCount)
	assert.Equal(t, time.Hour, cfg.Optimization.JobRetention)
	assert.Equal(t, amosa.DefaultConfig(), cfg.AMOSAConfig())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("OPT_WORKER_COUNT", "0")
	t.Setenv("AMOSA_ARCHIVE_HARD_LIMIT", "5")
	t.Setenv("AMOSA_ARCHIVE_SOFT_LIMIT", "8")
	t.Setenv("AMOSA_COOLING_FACTOR", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 1, cfg.Optimization.WorkerCount)

	a := cfg.AMOSAConfig()
	assert.Equal(t, 5, a.ArchiveHardLimit)
	assert.Equal(t, 8, a.ArchiveSoftLimit)
	assert.Equal(t, 0.5, a.CoolingFactor)
}

func TestLoadRejectsInvalidAMOSADefaults(t *testing.T) {
	t.Setenv("AMOSA_ARCHIVE_HARD_LIMIT", "100")
	t.Setenv("AMOSA_ARCHIVE_SOFT_LIMIT", "50")

	_, err := Load()
	assert.ErrorIs(t, err, optimization.ErrInvalidConfig)
}

func TestLoadRejectsMalformedEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		want        string
	}{
		{name: "development default", environment: "development", want: "debug"},
		{name: "production default", environment: "production", want: "info"},
		{name: "explicit level in development", environment: "development", level: "warn", want: "warn"},
		{name: "explicit level in production", environment: "production", level: "error", want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.environment)
			t.Setenv("LOG_LEVEL", tt.level)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Logging.Level)
		})
	}
}

func TestParseRunFile(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, rf *RunFile)
	}{
		{
			name: "overrides keep defaults",
			yaml: `
amosa:
  archive_hard_limit: 10
  seed: 7
problem:
  name: zdt1
  options:
    variables: 12
output: front.csv
`,
			check: func(t *testing.T, rf *RunFile) {
				assert.Equal(t, 10, rf.AMOSA.ArchiveHardLimit)
				assert.Equal(t, int64(7), rf.AMOSA.Seed)
				assert.Equal(t, amosa.DefaultConfig().ArchiveSoftLimit, rf.AMOSA.ArchiveSoftLimit)
				assert.Equal(t, "zdt1", rf.Problem.Name)
				assert.Equal(t, 12, rf.Problem.Options.Variables)
				assert.Equal(t, "front.csv", rf.Output)
			},
		},
		{
			name:  "threshold option",
			yaml:  "problem:\n  name: threshold\n  options:\n    threshold: 2.5\n",
			check: func(t *testing.T, rf *RunFile) {
				require.NotNil(t, rf.Problem.Options.Threshold)
				assert.Equal(t, 2.5, *rf.Problem.Options.Threshold)
			},
		},
		{
			name:    "missing problem",
			yaml:    "amosa:\n  seed: 1\n",
			wantErr: "problem name is required",
		},
		{
			name:    "unknown field",
			yaml:    "problem:\n  name: line\ncooling: 3\n",
			wantErr: "cooling",
		},
		{
			name:    "invalid parameters",
			yaml:    "amosa:\n  archive_hard_limit: 100\nproblem:\n  name: line\n",
			wantErr: "hard limit must not exceed soft limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf, err := ParseRunFile([]byte(tt.yaml))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, rf)
		})
	}
}

func TestLoadRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problem:\n  name: line\n"), 0o600))

	rf, err := LoadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line", rf.Problem.Name)

	_, err = LoadRunFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
