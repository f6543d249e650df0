package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/amosa/internal/optimization/amosa"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		WorkerCount int `env:"OPT_WORKER_COUNT" envDefault:"10"`

		// EvaluationWorkers bounds the goroutines a problem may use per evaluation
		EvaluationWorkers int `env:"OPT_EVALUATION_WORKERS" envDefault:"4"`

		// JobRetention is how long finished jobs stay queryable
		JobRetention time.Duration `env:"OPT_JOB_RETENTION" envDefault:"1h"`

		// CatalogDir holds the catalog files jobs may reference by name
		CatalogDir string `env:"OPT_CATALOG_DIR" envDefault:"catalogs"`
	}
	// AMOSA holds the parameters used by jobs that do not override them
	AMOSA struct {
		ArchiveHardLimit       int     `env:"AMOSA_ARCHIVE_HARD_LIMIT" envDefault:"20"`
		ArchiveSoftLimit       int     `env:"AMOSA_ARCHIVE_SOFT_LIMIT" envDefault:"50"`
		ArchiveGamma           int     `env:"AMOSA_ARCHIVE_GAMMA" envDefault:"2"`
		HillClimbingIterations int     `env:"AMOSA_HILL_CLIMBING_ITERATIONS" envDefault:"500"`
		InitialTemperature     float64 `env:"AMOSA_INITIAL_TEMPERATURE" envDefault:"500"`
		FinalTemperature       float64 `env:"AMOSA_FINAL_TEMPERATURE" envDefault:"0.000001"`
		CoolingFactor          float64 `env:"AMOSA_COOLING_FACTOR" envDefault:"0.9"`
		AnnealingIterations    int     `env:"AMOSA_ANNEALING_ITERATIONS" envDefault:"500"`
		EarlyTerminationWindow int     `env:"AMOSA_EARLY_TERMINATION_WINDOW" envDefault:"10"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Unset LOG_LEVEL defaults to debug in development and info elsewhere
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		}
	}

	if cfg.Optimization.WorkerCount < 1 {
		cfg.Optimization.WorkerCount = 1
	}

	if err := cfg.AMOSAConfig().Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AMOSAConfig returns the default optimizer parameters for jobs.
func (c *Config) AMOSAConfig() amosa.Config {
	return amosa.Config{
		ArchiveHardLimit:       c.AMOSA.ArchiveHardLimit,
		ArchiveSoftLimit:       c.AMOSA.ArchiveSoftLimit,
		ArchiveGamma:           c.AMOSA.ArchiveGamma,
		HillClimbingIterations: c.AMOSA.HillClimbingIterations,
		InitialTemperature:     c.AMOSA.InitialTemperature,
		FinalTemperature:       c.AMOSA.FinalTemperature,
		CoolingFactor:          c.AMOSA.CoolingFactor,
		AnnealingIterations:    c.AMOSA.AnnealingIterations,
		EarlyTerminationWindow: c.AMOSA.EarlyTerminationWindow,
	}
}
