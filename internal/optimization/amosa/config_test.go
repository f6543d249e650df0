package amosa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/amosa/internal/optimization"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "hard equals soft", mutate: func(c *Config) { c.ArchiveHardLimit, c.ArchiveSoftLimit = 30, 30 }},
		{name: "hill climbing disabled", mutate: func(c *Config) { c.HillClimbingIterations = 0 }},
		{name: "early termination disabled", mutate: func(c *Config) { c.EarlyTerminationWindow = 0 }},
		{
			name:    "hard above soft",
			mutate:  func(c *Config) { c.ArchiveHardLimit, c.ArchiveSoftLimit = 100, 50 },
			wantErr: "hard limit must not exceed soft limit",
		},
		{
			name:    "zero hard limit",
			mutate:  func(c *Config) { c.ArchiveHardLimit = 0 },
			wantErr: "archive hard limit must be at least 1",
		},
		{
			name:    "negative hill climbing",
			mutate:  func(c *Config) { c.HillClimbingIterations = -1 },
			wantErr: "hill-climbing iterations",
		},
		{
			name:    "zero gamma",
			mutate:  func(c *Config) { c.ArchiveGamma = 0 },
			wantErr: "archive gamma",
		},
		{
			name:    "zero annealing iterations",
			mutate:  func(c *Config) { c.AnnealingIterations = 0 },
			wantErr: "annealing iterations",
		},
		{
			name:    "zero final temperature",
			mutate:  func(c *Config) { c.FinalTemperature = 0 },
			wantErr: "final temperature",
		},
		{
			name:    "initial below final",
			mutate:  func(c *Config) { c.InitialTemperature, c.FinalTemperature = 1, 2 },
			wantErr: "initial temperature",
		},
		{
			name:    "cooling factor of one",
			mutate:  func(c *Config) { c.CoolingFactor = 1 },
			wantErr: "cooling factor",
		},
		{
			name:    "negative window",
			mutate:  func(c *Config) { c.EarlyTerminationWindow = -1 },
			wantErr: "early termination window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, optimization.ErrInvalidConfig)

			optErr, ok := optimization.IsOptimizationError(err)
			require.True(t, ok)
			assert.Equal(t, "amosa", optErr.Component)
		})
	}
}

func TestNewOptimizerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArchiveHardLimit, cfg.ArchiveSoftLimit = 100, 50

	o, err := NewOptimizer(cfg)
	assert.Nil(t, o)
	assert.ErrorIs(t, err, optimization.ErrInvalidConfig)
}
