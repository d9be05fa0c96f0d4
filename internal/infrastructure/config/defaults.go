package config

import (
	"time"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Loading defaults
	if cfg.Loading.LoadRate == 0 {
		cfg.Loading.LoadRate = loading.DefaultLoadRate
	}
	if cfg.Loading.MaxRetryAttempts == 0 {
		cfg.Loading.MaxRetryAttempts = loading.DefaultMaxRetryAttempts
	}
	if cfg.Loading.HoldFullMarginKg == 0 {
		cfg.Loading.HoldFullMarginKg = loading.DefaultHoldFullMargin
	}
	if cfg.Loading.SmallestLoadKg == 0 {
		cfg.Loading.SmallestLoadKg = loading.DefaultSmallestLoad
	}
	if cfg.Loading.BackgroundStrengthModifier == 0 {
		cfg.Loading.BackgroundStrengthModifier = loading.DefaultBackgroundStrengthModifier
	}
	if len(cfg.Loading.LifeSupport) == 0 {
		cfg.Loading.LifeSupport = []string{"oxygen", "water", "food"}
	}

	// Simulation defaults
	if cfg.Simulation.MaxTicks == 0 {
		cfg.Simulation.MaxTicks = 1000
	}
	if cfg.Simulation.TickDuration == 0 {
		cfg.Simulation.TickDuration = 12
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "supplyload"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "supplyload"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
