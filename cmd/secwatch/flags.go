package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	ListenAddr      string
	NATSURL         string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	Demo            bool
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SECWATCH_CONFIG", ""),
		"Path to configuration file (env: SECWATCH_CONFIG)")

	flag.StringVar(&cfg.ListenAddr, "listen",
		getEnv("SECWATCH_LISTEN", ""),
		"Listen address override, e.g. :8080 (env: SECWATCH_LISTEN)")

	flag.StringVar(&cfg.NATSURL, "nats-url",
		getEnv("SECWATCH_NATS_URL", ""),
		"NATS url override; enables the NATS sink (env: SECWATCH_NATS_URL)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SECWATCH_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SECWATCH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SECWATCH_LOG_FORMAT", "json"),
		"Log format: json, text (env: SECWATCH_LOG_FORMAT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SECWATCH_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: SECWATCH_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.Demo, "demo",
		getEnvBool("SECWATCH_DEMO", true),
		"Seed the monitor with generated mock frameworks (env: SECWATCH_DEMO)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
