// Package config loads and validates the SecWatch service configuration
// from a JSON file, with programmatic defaults for every field.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/c360/secwatch/errors"
)

// Duration wraps time.Duration so JSON config can use strings like "6h".
type Duration time.Duration

// UnmarshalJSON parses either a duration string or a nanosecond number.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(value))
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
	return nil
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete application configuration
type Config struct {
	Version string        `json:"version"`
	Service ServiceConfig `json:"service"`
	Monitor MonitorConfig `json:"monitor"`
	NATS    NATSConfig    `json:"nats"`
	Demo    DemoConfig    `json:"demo"`
}

// ServiceConfig holds service identity and HTTP settings
type ServiceConfig struct {
	Name            string   `json:"name"`
	ListenAddr      string   `json:"listen_addr"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// MonitorConfig holds scheduler cadences and history capacities
type MonitorConfig struct {
	OverallInterval   Duration `json:"overall_interval"`
	CriticalInterval  Duration `json:"critical_interval"`
	DueDatesInterval  Duration `json:"due_dates_interval"`
	MetricsHistoryCap int      `json:"metrics_history_cap"`
	AlertsHistoryCap  int      `json:"alerts_history_cap"`
}

// NATSConfig holds telemetry sink connection settings
type NATSConfig struct {
	Enabled        bool   `json:"enabled"`
	URL            string `json:"url"`
	MetricsSubject string `json:"metrics_subject"`
	AlertsSubject  string `json:"alerts_subject"`
	ClientName     string `json:"client_name"`
}

// DemoConfig controls the mock framework data seeded at startup
type DemoConfig struct {
	Enabled    bool  `json:"enabled"`
	Frameworks int   `json:"frameworks"`
	Seed       int64 `json:"seed"`
}

// Default returns the configuration used when no file is provided
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Service: ServiceConfig{
			Name:            "secwatch",
			ListenAddr:      ":8080",
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Monitor: MonitorConfig{
			OverallInterval:   Duration(time.Hour),
			CriticalInterval:  Duration(6 * time.Hour),
			DueDatesInterval:  Duration(24 * time.Hour),
			MetricsHistoryCap: 100,
			AlertsHistoryCap:  50,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://localhost:4222",
			MetricsSubject: "secwatch.health.metrics",
			AlertsSubject:  "secwatch.health.alerts",
			ClientName:     "secwatch",
		},
		Demo: DemoConfig{
			Enabled:    true,
			Frameworks: 4,
			Seed:       0, // 0 means time-based
		},
	}
}

// Load reads a config file and merges it over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "read file")
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "parse json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "service name")
	}
	if c.Service.ListenAddr == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "listen address")
	}
	if c.Monitor.OverallInterval <= 0 || c.Monitor.CriticalInterval <= 0 || c.Monitor.DueDatesInterval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "check intervals")
	}
	if c.Monitor.MetricsHistoryCap <= 0 || c.Monitor.AlertsHistoryCap <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "history capacities")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nats url")
	}
	if c.Demo.Enabled && c.Demo.Frameworks <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "demo framework count")
	}
	return nil
}
