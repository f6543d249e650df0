// Package amosa implements the Archived Multi-Objective Simulated Annealing
// optimizer: a constraint-aware metaheuristic approximating the Pareto front
// of a bounded mixed integer/real problem.
package amosa

import (
	"github.com/copyleftdev/amosa/internal/optimization"
)

// Config holds the AMOSA run parameters.
type Config struct {
	// ArchiveHardLimit is the archive size enforced after clustering
	ArchiveHardLimit int `json:"archive_hard_limit" yaml:"archive_hard_limit"`

	// ArchiveSoftLimit is the archive size that triggers clustering
	ArchiveSoftLimit int `json:"archive_soft_limit" yaml:"archive_soft_limit"`

	// ArchiveGamma scales the number of hill-climbed seeds (gamma * soft limit)
	ArchiveGamma int `json:"archive_gamma" yaml:"archive_gamma"`

	// HillClimbingIterations bounds the refinement of each initial seed; 0 disables it
	HillClimbingIterations int `json:"hill_climbing_iterations" yaml:"hill_climbing_iterations"`

	// InitialTemperature is the starting temperature of the matter
	InitialTemperature float64 `json:"initial_temperature" yaml:"initial_temperature"`

	// FinalTemperature ends the annealing once reached
	FinalTemperature float64 `json:"final_temperature" yaml:"final_temperature"`

	// CoolingFactor multiplies the temperature after each outer iteration
	CoolingFactor float64 `json:"cooling_factor" yaml:"cooling_factor"`

	// AnnealingIterations is the number of perturbations per temperature
	AnnealingIterations int `json:"annealing_iterations" yaml:"annealing_iterations"`

	// EarlyTerminationWindow is the number of trailing phi samples that must
	// all be zero to stop early; 0 disables early termination
	EarlyTerminationWindow int `json:"early_termination_window" yaml:"early_termination_window"`

	// Seed for the random number generator; 0 seeds from the clock
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the default AMOSA parameters.
func DefaultConfig() Config {
	return Config{
		ArchiveHardLimit:       20,
		ArchiveSoftLimit:       50,
		ArchiveGamma:           2,
		HillClimbingIterations: 500,
		InitialTemperature:     500,
		FinalTemperature:       1e-6,
		CoolingFactor:          0.9,
		AnnealingIterations:    500,
		EarlyTerminationWindow: 10,
	}
}

// Validate checks the parameters before a run starts.
func (c Config) Validate() error {
	switch {
	case c.ArchiveHardLimit < 1:
		return invalidConfig("archive hard limit must be at least 1")
	case c.ArchiveSoftLimit < 1:
		return invalidConfig("archive soft limit must be at least 1")
	case c.ArchiveHardLimit > c.ArchiveSoftLimit:
		return invalidConfig("hard limit must not exceed soft limit")
	case c.HillClimbingIterations < 0:
		return invalidConfig("hill-climbing iterations must be greater than or equal to 0")
	case c.ArchiveGamma < 1:
		return invalidConfig("archive gamma must be at least 1")
	case c.AnnealingIterations < 1:
		return invalidConfig("annealing iterations must be at least 1")
	case c.FinalTemperature <= 0:
		return invalidConfig("final temperature must be greater than 0")
	case c.InitialTemperature <= c.FinalTemperature:
		return invalidConfig("initial temperature must be greater than the final one")
	case c.CoolingFactor <= 0 || c.CoolingFactor >= 1:
		return invalidConfig("cooling factor must be in the (0, 1) range")
	case c.EarlyTerminationWindow < 0:
		return invalidConfig("early termination window must not be negative")
	}
	return nil
}

func invalidConfig(msg string) error {
	return optimization.WrapError(optimization.ErrInvalidConfig, msg).
		WithOperation("validate").WithComponent("amosa")
}
