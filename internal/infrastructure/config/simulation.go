package config

import "time"

// SimulationConfig holds pacing for the simulate command
type SimulationConfig struct {
	// Ticks per second of wall time; 0 runs unpaced
	TickRate float64 `mapstructure:"tick_rate" validate:"gte=0"`

	// Upper bound on ticks before the simulation gives up
	MaxTicks int `mapstructure:"max_ticks" validate:"min=1"`

	// Loading time units granted to each worker per tick
	TickDuration float64 `mapstructure:"tick_duration" validate:"gt=0"`

	// Wall-clock budget for a whole run; 0 disables it
	Timeout time.Duration `mapstructure:"timeout"`
}
