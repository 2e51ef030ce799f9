// FILE: logport/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGPORT_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := handlePortsEnv(cfg); err != nil {
		return nil, err
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.validate()
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGPORT_" + env
	return env
}

func GetConfigPath() string {
	if configFile := os.Getenv("LOGPORT_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGPORT_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGPORT_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logport.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logport.toml")
	}

	return "logport.toml"
}

// LOGPORT_SYSLOG_PORTS accepts a comma-separated port list, which the
// generic env mapping cannot express for a TOML array.
func handlePortsEnv(cfg *lconfig.Config) error {
	portsStr := os.Getenv("LOGPORT_SYSLOG_PORTS")
	if portsStr == "" {
		return nil
	}

	var ports []int64
	for _, part := range strings.Split(portsStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		port, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid port in LOGPORT_SYSLOG_PORTS: %q", part)
		}
		ports = append(ports, port)
	}

	cfg.Set("syslog.ports", ports)
	return nil
}
