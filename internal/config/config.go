// Package config handles loading and parsing application configuration.
// It supports these sources (in priority order for the file path):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Without a file, every setting comes from the environment (and an optional
// .env file in the working directory), falling back to env-default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// LogLevel overrides the level implied by Env when set
	// ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"data/students.db"`

	Reports  Reports  `yaml:"reports"`
	Transfer Transfer `yaml:"transfer"`
}

// Reports holds report defaults.
type Reports struct {
	// AtRiskThreshold is the score below which a student is reported at risk.
	AtRiskThreshold float64 `yaml:"at_risk_threshold" env:"AT_RISK_THRESHOLD" env-default:"2.0"`
}

// Transfer holds CSV import/export settings.
type Transfer struct {
	// ExportDir is where exports land when only a file name is given.
	ExportDir string `yaml:"export_dir" env:"EXPORT_DIR" env-default:"data"`
}

// ResolvePath returns the config file path: CONFIG_PATH first, then the
// value of the --config flag. An empty result means "environment only".
func ResolvePath(flagValue string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return flagValue
}

// Load reads, validates, and returns the application config.
func Load(path string) (*Config, error) {
	// A missing .env is normal; anything else (bad syntax, permissions) is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: config file %s: %w", path, err)
		}
		// ReadConfig reads the file, then applies env overrides and defaults.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main: it exits the process on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Validate checks values that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if c.StoragePath == "" {
		return errors.New("config: storage_path must not be empty")
	}
	if t := c.Reports.AtRiskThreshold; t < 0 || t > 4 {
		return fmt.Errorf("config: at_risk_threshold %.2f is outside 0.0-4.0", t)
	}
	switch c.Env {
	case "dev", "staging", "prod":
	default:
		return fmt.Errorf("config: unknown env %q (want dev, staging or prod)", c.Env)
	}
	return nil
}
