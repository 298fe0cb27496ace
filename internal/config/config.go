// Package config holds the settings of the amountctl command.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
	"github.com/joho/godotenv"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the settings shared by all amountctl commands.
type Config struct {
	LogLevel string // debug, info, warn or error
	Output   string // text, json or yaml

	// Scale is the number of decimal places of one whole unit.
	// With Scale 0 amounts are printed in minor units only.
	Scale int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel: "info",
		Output:   OutputText,
		Scale:    0,
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables.
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	// A missing .env file is not an error
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("loading %v: %w", envPath, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if level := os.Getenv("AMOUNTCTL_LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if output := os.Getenv("AMOUNTCTL_OUTPUT"); output != "" {
		cfg.Output = strings.ToLower(output)
	}
	if scale := os.Getenv("AMOUNTCTL_SCALE"); scale != "" {
		n, err := strconv.Atoi(scale)
		if err != nil {
			return Config{}, fmt.Errorf("parsing AMOUNTCTL_SCALE: %w", err)
		}
		cfg.Scale = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if any setting is out of range.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q is not supported", c.LogLevel)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output %q is not supported", c.Output)
	}
	if c.Scale < 0 || c.Scale > decimal.MaxScale {
		return fmt.Errorf("scale %v is out of range [0, %v]", c.Scale, decimal.MaxScale)
	}
	return nil
}
