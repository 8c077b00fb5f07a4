package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration shared by the TUI and the subcommands.
type Config struct {
	// Device is the presence sensor base address (host or host:port).
	Device string `yaml:"device"`
	// Gateway, when set, routes zone reads/writes through the intermediary
	// at this base URL instead of talking to the device directly.
	Gateway string `yaml:"gateway"`
	// Listen is the bind address for `serve` and `mock`.
	Listen   string   `yaml:"listen"`
	IDPolicy IDPolicy `yaml:"id_policy"`
	LogFile  string   `yaml:"log_file"`
	LogLevel string   `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Device:   "192.168.178.145",
		Listen:   ":8080",
		IDPolicy: IDByCount,
		LogFile:  "zone-radar.log",
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, an optional YAML file and the
// environment, in that order of precedence (later wins). A missing .env file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Device = getEnv("ZONE_RADAR_DEVICE", cfg.Device)
	cfg.Gateway = getEnv("ZONE_RADAR_GATEWAY", cfg.Gateway)
	cfg.Listen = getEnv("ZONE_RADAR_LISTEN", cfg.Listen)
	cfg.IDPolicy = IDPolicy(getEnv("ZONE_RADAR_ID_POLICY", string(cfg.IDPolicy)))
	cfg.LogFile = getEnv("ZONE_RADAR_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("ZONE_RADAR_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

// Validate checks fields that have a closed set of values.
func (c Config) Validate() error {
	if !c.IDPolicy.Valid() {
		return fmt.Errorf("unknown id policy %q", c.IDPolicy)
	}
	if strings.TrimSpace(c.Device) == "" {
		return errors.New("device address is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
