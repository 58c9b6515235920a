// Package config loads runtime settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything main needs to wire the reconstruction service.
type Config struct {
	// Workers bounds how many jobs run at once.
	Workers int `yaml:"workers"`
	// CacheSize is the number of Lagrange bases kept in memory.
	CacheSize int `yaml:"cache_size"`
	// Verify checks shares beyond the threshold against the polynomial.
	Verify bool `yaml:"verify"`
	// StorePath enables the result ledger when set.
	StorePath string `yaml:"store_path"`
	// MetricsFile receives a Prometheus text dump after the run when set.
	MetricsFile string `yaml:"metrics_file"`
	Log         Log    `yaml:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		CacheSize: 128,
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SHAMIR_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SHAMIR_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHAMIR_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("SHAMIR_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHAMIR_CACHE_SIZE: %w", err)
		}
		c.CacheSize = n
	}
	if v := os.Getenv("SHAMIR_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHAMIR_VERIFY: %w", err)
		}
		c.Verify = b
	}
	if v := os.Getenv("SHAMIR_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("SHAMIR_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := os.Getenv("SHAMIR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SHAMIR_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache_size must be positive, got %d", c.CacheSize))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
