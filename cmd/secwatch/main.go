// Package main implements the entry point for the SecWatch service: the
// compliance health-monitoring backbone of a security-operations console.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/secwatch/compliance"
	"github.com/c360/secwatch/config"
	"github.com/c360/secwatch/gateway"
	"github.com/c360/secwatch/metric"
	"github.com/c360/secwatch/monitor"
	"github.com/c360/secwatch/sink"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "secwatch"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()
	registry := metric.NewRegistry()

	telemetry, err := setupSink(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Close(closeCtx); err != nil {
			logger.Warn("sink close failed", "error", err)
		}
	}()

	mon, err := monitor.New(
		monitor.WithSink(telemetry),
		monitor.WithLogger(logger),
		monitor.WithMetricsRegistry(registry),
		monitor.WithCheckIntervals(
			cfg.Monitor.OverallInterval.Std(),
			cfg.Monitor.CriticalInterval.Std(),
			cfg.Monitor.DueDatesInterval.Std(),
		),
		monitor.WithHistoryCaps(cfg.Monitor.MetricsHistoryCap, cfg.Monitor.AlertsHistoryCap),
	)
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}
	defer mon.Cleanup()

	server := gateway.NewServer(cfg.Service.ListenAddr, mon,
		gateway.WithLogger(logger),
		gateway.WithMetricsRegistry(registry),
	)

	frameworks := loadFrameworks(cfg, logger)
	if ok, err := mon.Initialize(frameworks, server.Broadcast); !ok {
		return fmt.Errorf("initialize monitor: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}

	// Evaluate once at startup so dashboards have data immediately
	res := mon.RunCheck(ctx, frameworks)
	logger.Info("initial health check complete",
		"metrics", len(res.Metrics),
		"alerts", len(res.Alerts))

	return waitForShutdown(server, cfg.Service.ShutdownTimeout.Std(), logger)
}

// loadConfiguration merges the config file with CLI overrides
func loadConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if cliCfg.ListenAddr != "" {
		cfg.Service.ListenAddr = cliCfg.ListenAddr
	}
	if cliCfg.NATSURL != "" {
		cfg.NATS.Enabled = true
		cfg.NATS.URL = cliCfg.NATSURL
	}
	if !cliCfg.Demo {
		cfg.Demo.Enabled = false
	}
	cfg.Service.ShutdownTimeout = config.Duration(cliCfg.ShutdownTimeout)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupSink builds the telemetry sink: NATS when enabled, otherwise the
// slog-backed development sink.
func setupSink(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry *metric.Registry) (sink.Sink, error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS disabled, using log sink")
		return sink.NewLogSink(logger, 0), nil
	}

	s, err := sink.NewNATSSink(ctx, cfg.NATS.URL,
		sink.WithLogger(logger),
		sink.WithMetrics(registry.CoreMetrics()),
		sink.WithSubjects(cfg.NATS.MetricsSubject, cfg.NATS.AlertsSubject),
		sink.WithClientName(cfg.NATS.ClientName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect NATS sink: %w", err)
	}
	return s, nil
}

// loadFrameworks returns the framework snapshot to monitor. Demo mode
// generates mock data; otherwise the snapshot starts empty and arrives
// through SetFrameworks.
func loadFrameworks(cfg *config.Config, logger *slog.Logger) []compliance.Framework {
	if !cfg.Demo.Enabled {
		return nil
	}

	seed := cfg.Demo.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	frameworks := compliance.GenerateFrameworks(rng, time.Now(), cfg.Demo.Frameworks)
	logger.Info("demo frameworks generated", "count", len(frameworks), "seed", seed)
	return frameworks
}

func waitForShutdown(server *gateway.Server, timeout time.Duration, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
