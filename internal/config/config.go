// Package config provides configuration loading for docsmith.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DOCSMITH_SERVER_PORT, DOCSMITH_ENGINE_MODEL, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"net/url"
)

// Config is the root configuration for the docsmith service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Confluence ConfluenceConfig `koanf:"confluence"`
	Source     SourceConfig     `koanf:"source"`
	Engine     EngineConfig     `koanf:"engine"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// ConfluenceConfig holds page store settings.
type ConfluenceConfig struct {
	// BaseURL is the Confluence site root, e.g. https://example.atlassian.net/wiki.
	BaseURL string `koanf:"base_url"`
	// Username is the account email for basic auth.
	Username string `koanf:"username"`
	// APIToken is the Atlassian API token paired with Username.
	APIToken Secret `koanf:"api_token"`
	// SpaceID is the default space documentation pages are written to.
	SpaceID string `koanf:"space_id"`
	// ParentPageID optionally roots generated pages under an existing page.
	ParentPageID string `koanf:"parent_page_id"`
}

// SourceConfig holds source repository settings.
type SourceConfig struct {
	// RepoPath is the path to the local clone docsmith reads from.
	RepoPath string `koanf:"repo_path"`
	// HistoryLimit caps commits returned by the get-history action.
	HistoryLimit int `koanf:"history_limit"`
}

// EngineConfig holds reasoning engine settings.
type EngineConfig struct {
	// BaseURL is an OpenAI-compatible chat completions endpoint.
	BaseURL string `koanf:"base_url"`
	APIKey  Secret `koanf:"api_key"`
	Model   string `koanf:"model"`
}

// PipelineConfig tunes the orchestration pipeline.
type PipelineConfig struct {
	// TotalStepBudget is the engine-round budget B shared across phases.
	TotalStepBudget int `koanf:"total_step_budget"`
	// PlaceholderSentinels are literal argument values treated as
	// placeholders during argument repair. The set is configurable because
	// the detection is heuristic and may collide with legitimate values.
	PlaceholderSentinels []string `koanf:"placeholder_sentinels"`
}

// WebhookConfig holds inbound webhook settings.
type WebhookConfig struct {
	// Secret is the shared HMAC secret for signature verification.
	Secret Secret `koanf:"secret"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// NewDefaultConfig returns a config populated with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8900,
		},
		Source: SourceConfig{
			RepoPath:     ".",
			HistoryLimit: 10,
		},
		Engine: EngineConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o",
		},
		Pipeline: PipelineConfig{
			TotalStepBudget:      20,
			PlaceholderSentinels: nil, // orchestrator applies its defaults
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Confluence.BaseURL != "" {
		if _, err := url.Parse(c.Confluence.BaseURL); err != nil {
			return fmt.Errorf("confluence.base_url: %w", err)
		}
	}
	if c.Pipeline.TotalStepBudget <= 0 {
		return fmt.Errorf("pipeline.total_step_budget must be positive, got %d", c.Pipeline.TotalStepBudget)
	}
	if c.Source.HistoryLimit <= 0 {
		return fmt.Errorf("source.history_limit must be positive, got %d", c.Source.HistoryLimit)
	}
	return nil
}
