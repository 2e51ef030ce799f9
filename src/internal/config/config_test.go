// FILE: logport/src/internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Validate(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.validate())

	assert.Equal(t, []int64{1514}, cfg.Syslog.Ports)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "./logs", cfg.Storage.Directory)
	assert.True(t, cfg.Storage.SyncOnWrite)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, int64(8080), cfg.HTTP.Port)
}

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*Config)
		errMatch string
	}{
		{
			name:     "NoPorts",
			mutate:   func(c *Config) { c.Syslog.Ports = nil },
			errMatch: "no syslog ports",
		},
		{
			name:     "PortOutOfRange",
			mutate:   func(c *Config) { c.Syslog.Ports = []int64{70000} },
			errMatch: "invalid syslog port",
		},
		{
			name:     "PortZero",
			mutate:   func(c *Config) { c.Syslog.Ports = []int64{0} },
			errMatch: "invalid syslog port",
		},
		{
			name:     "DuplicatePorts",
			mutate:   func(c *Config) { c.Syslog.Ports = []int64{1514, 1515, 1514} },
			errMatch: "duplicate syslog port",
		},
		{
			name:     "BadBufferSize",
			mutate:   func(c *Config) { c.Syslog.BufferSize = 0 },
			errMatch: "buffer size",
		},
		{
			name:     "UnknownBackend",
			mutate:   func(c *Config) { c.Storage.Backend = "redis" },
			errMatch: "unknown storage backend",
		},
		{
			name:     "FileBackendNoDirectory",
			mutate:   func(c *Config) { c.Storage.Directory = "" },
			errMatch: "requires a directory",
		},
		{
			name: "MemoryBackendBadCap",
			mutate: func(c *Config) {
				c.Storage.Backend = "memory"
				c.Storage.MemoryCap = 0
			},
			errMatch: "memory cap",
		},
		{
			name:     "BadReadLimit",
			mutate:   func(c *Config) { c.Storage.ReadLimit = 0 },
			errMatch: "read limit",
		},
		{
			name:     "BadHTTPPort",
			mutate:   func(c *Config) { c.HTTP.Port = -1 },
			errMatch: "invalid HTTP port",
		},
		{
			name: "BadRateLimitRate",
			mutate: func(c *Config) {
				c.HTTP.RateLimit.Enabled = true
				c.HTTP.RateLimit.RequestsPerSecond = 0
			},
			errMatch: "requests per second",
		},
		{
			name: "BadRateLimitBurst",
			mutate: func(c *Config) {
				c.HTTP.RateLimit.Enabled = true
				c.HTTP.RateLimit.BurstSize = 0
			},
			errMatch: "burst size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			tc.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMatch)
		})
	}
}

func TestValidate_DisabledHTTPSkipsPortCheck(t *testing.T) {
	cfg := defaults()
	cfg.HTTP.Enabled = false
	cfg.HTTP.Port = 0
	assert.NoError(t, cfg.validate())
}
