package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus endpoint of a simulation run
type MetricsConfig struct {
	// Enabled serves /metrics for the duration of simulate (also --metrics)
	Enabled bool `mapstructure:"enabled"`

	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Host string `mapstructure:"host"`
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Address is the host:port the metrics server binds
func (c MetricsConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
