package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	Level string

	// Format selects the encoder: json or console.
	Format string

	// Output selects the destination: stderr or stdout.
	Output string
}

// NewDefaultConfig returns production defaults: info-level JSON on stderr.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// Validate checks that the config values are usable.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", c.Format)
	}
	switch c.Output {
	case "", "stderr", "stdout":
	default:
		return fmt.Errorf("output must be stderr or stdout, got %q", c.Output)
	}
	return nil
}

func (c *Config) output() zapcore.WriteSyncer {
	if c.Output == "stdout" {
		return zapcore.AddSync(os.Stdout)
	}
	return zapcore.AddSync(os.Stderr)
}
