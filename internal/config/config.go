// Package config assembles relstore's settings from defaults, an optional
// YAML file and RELSTORE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/filestore"
	"github.com/koustreak/relstore/internal/logger"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RELSTORE_"

// DefaultDSN is the SQLite file used when nothing else is configured.
const DefaultDSN = "addressbook.db"

// Config is the full application configuration.
type Config struct {
	Database database.Config  `yaml:"database" envPrefix:"DB_"`
	Log      logger.Config    `yaml:"log" envPrefix:"LOG_"`
	HTTP     HTTPConfig       `yaml:"http" envPrefix:"HTTP_"`
	Export   filestore.Config `yaml:"export" envPrefix:"EXPORT_"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(DefaultDSN),
		Log:      *logger.DefaultConfig(),
		HTTP:     HTTPConfig{Addr: ":8080"},
		Export:   filestore.Config{Provider: filestore.ProviderMinIO, Bucket: "relstore-exports"},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is empty) and then with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
