package config

import (
	"fmt"
	"time"
)

const sqliteMemory = ":memory:"

// DatabaseConfig selects where loading events and session outcomes are kept.
// sqlite is the default, one file per simulation or in memory; postgres
// serves a shared event log.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// postgres: full URL, or the individual fields below when empty
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// sqlite: file path, empty or ":memory:" for a throwaway database
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig bounds the postgres connection pool
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// SQLite returns a config for the sqlite file at path
func SQLite(path string) DatabaseConfig {
	return DatabaseConfig{Type: "sqlite", Path: path}
}

// DSN is the driver connection string: the postgres URL or key/value DSN,
// or the sqlite path
func (c DatabaseConfig) DSN() string {
	if c.Type == "sqlite" {
		if c.Path == "" {
			return sqliteMemory
		}
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// InMemory reports whether the database vanishes with its last connection
func (c DatabaseConfig) InMemory() bool {
	return c.Type == "sqlite" && c.DSN() == sqliteMemory
}
