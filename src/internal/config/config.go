// FILE: logport/src/internal/config/config.go
package config

import (
	"fmt"

	"logport/src/internal/core"
)

type Config struct {
	Syslog  SyslogConfig  `toml:"syslog"`
	Storage StorageConfig `toml:"storage"`
	HTTP    HTTPConfig    `toml:"http"`
	Logging *LogConfig    `toml:"logging"`

	// Suppresses all console output, set from CLI
	Quiet bool `toml:"quiet"`
}

// SyslogConfig describes the UDP ingestion side. One receiver is
// started per entry in Ports; all bind to the same host address.
type SyslogConfig struct {
	Host       string  `toml:"host"`
	Ports      []int64 `toml:"ports"`
	BufferSize int64   `toml:"buffer_size"`
}

// StorageConfig selects and tunes the record store.
type StorageConfig struct {
	// "file" persists one append-only file per port,
	// "memory" keeps a bounded in-memory ring instead
	Backend string `toml:"backend"`

	// Directory holding the per-port files (file backend)
	Directory string `toml:"directory"`

	// Maximum lines tail-read per port file during a query
	ReadLimit int64 `toml:"read_limit"`

	// Ring capacity (memory backend)
	MemoryCap int64 `toml:"memory_cap"`

	// Fsync after every appended record (file backend)
	SyncOnWrite bool `toml:"sync_on_write"`
}

type HTTPConfig struct {
	Enabled   bool             `toml:"enabled"`
	Host      string           `toml:"host"`
	Port      int64            `toml:"port"`
	RateLimit *RateLimitConfig `toml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BurstSize         int64   `toml:"burst_size"`
}

func defaults() *Config {
	return &Config{
		Syslog: SyslogConfig{
			Host:       "0.0.0.0",
			Ports:      []int64{1514},
			BufferSize: core.DefaultBufferSize,
		},
		Storage: StorageConfig{
			Backend:     "file",
			Directory:   "./logs",
			ReadLimit:   core.DefaultReadLimit,
			MemoryCap:   core.DefaultMemoryCap,
			SyncOnWrite: true,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			RateLimit: &RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				BurstSize:         100,
			},
		},
		Logging: DefaultLogConfig(),
	}
}

func (c *Config) validate() error {
	if len(c.Syslog.Ports) == 0 {
		return fmt.Errorf("no syslog ports configured")
	}
	seen := make(map[int64]bool, len(c.Syslog.Ports))
	for _, port := range c.Syslog.Ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid syslog port: %d", port)
		}
		if seen[port] {
			return fmt.Errorf("duplicate syslog port: %d", port)
		}
		seen[port] = true
	}
	if c.Syslog.BufferSize < 1 {
		return fmt.Errorf("syslog buffer size must be positive: %d", c.Syslog.BufferSize)
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Directory == "" {
			return fmt.Errorf("file storage requires a directory")
		}
	case "memory":
		if c.Storage.MemoryCap < 1 {
			return fmt.Errorf("memory cap must be positive: %d", c.Storage.MemoryCap)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.ReadLimit < 1 {
		return fmt.Errorf("storage read limit must be positive: %d", c.Storage.ReadLimit)
	}

	if c.HTTP.Enabled {
		if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
			return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
		}
		if rl := c.HTTP.RateLimit; rl != nil && rl.Enabled {
			if rl.RequestsPerSecond <= 0 {
				return fmt.Errorf("rate limit requests per second must be positive: %f", rl.RequestsPerSecond)
			}
			if rl.BurstSize < 1 {
				return fmt.Errorf("rate limit burst size must be positive: %d", rl.BurstSize)
			}
		}
	}

	if c.Logging != nil {
		if err := validateLogConfig(c.Logging); err != nil {
			return err
		}
	}

	return nil
}
