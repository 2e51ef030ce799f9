// FILE: logport/src/cmd/logport/bootstrap.go
package main

import (
	"context"
	"fmt"
	"strings"

	"logport/src/internal/config"
	"logport/src/internal/server"
	"logport/src/internal/service"
	"logport/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService creates the collector service and, if enabled, the
// HTTP viewer on top of it.
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, *server.Server, error) {
	svc, err := service.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	if err := svc.Start(); err != nil {
		svc.Shutdown()
		return nil, nil, err
	}

	var srv *server.Server
	if cfg.HTTP.Enabled {
		srv = server.New(&cfg.HTTP, svc, logger)
		if err := srv.Start(ctx); err != nil {
			// The collector keeps running; the viewer is just unreachable
			logger.Error("msg", "Failed to start HTTP server",
				"port", cfg.HTTP.Port,
				"error", err)
			srv = nil
		}
	}

	logger.Info("msg", "logport started",
		"version", version.Short(),
		"ports", cfg.Syslog.Ports,
		"backend", cfg.Storage.Backend)

	return svc, srv, nil
}

// applyFlagOverrides folds the explicit log-* CLI flags into the
// loaded configuration.
func applyFlagOverrides(cfg *config.Config) {
	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}

	if *logOutput != "" {
		cfg.Logging.Output = *logOutput
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logDir != "" {
		if cfg.Logging.File == nil {
			cfg.Logging.File = &config.LogFileConfig{}
		}
		cfg.Logging.File.Directory = *logDir
	}
	if *logFile != "" {
		if cfg.Logging.File == nil {
			cfg.Logging.File = &config.LogFileConfig{}
		}
		cfg.Logging.File.Name = *logFile
	}
	if *logConsole != "" {
		if cfg.Logging.Console == nil {
			cfg.Logging.Console = &config.LogConsoleConfig{}
		}
		cfg.Logging.Console.Target = *logConsole
	}
	cfg.Quiet = *quiet
}

// initializeLogger sets up the application logger from configuration.
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	var configArgs []string

	if cfg.Quiet {
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger.ApplyConfigString(configArgs...)
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.ApplyConfigString(configArgs...)
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	if cfg.Logging.File != nil {
		*configArgs = append(*configArgs,
			fmt.Sprintf("directory=%s", cfg.Logging.File.Directory),
			fmt.Sprintf("name=%s", cfg.Logging.File.Name),
			fmt.Sprintf("max_size_mb=%d", cfg.Logging.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", cfg.Logging.File.MaxTotalSizeMB))

		if cfg.Logging.File.RetentionHours > 0 {
			*configArgs = append(*configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", cfg.Logging.File.RetentionHours))
		}
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr" // default

	if cfg.Logging.Console != nil && cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
