package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8900, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Pipeline.TotalStepBudget)
	assert.Equal(t, 10, cfg.Source.HistoryLimit)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero budget", func(c *Config) { c.Pipeline.TotalStepBudget = 0 }},
		{"zero history limit", func(c *Config) { c.Source.HistoryLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8900, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.Engine.Model)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	content := `
server:
  port: 9100
confluence:
  base_url: https://example.atlassian.net/wiki
  space_id: DOCS
  api_token: yaml-secret
pipeline:
  total_step_budget: 30
  placeholder_sentinels:
    - "TBD"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "https://example.atlassian.net/wiki", cfg.Confluence.BaseURL)
	assert.Equal(t, "DOCS", cfg.Confluence.SpaceID)
	assert.Equal(t, "yaml-secret", cfg.Confluence.APIToken.Value())
	assert.Equal(t, 30, cfg.Pipeline.TotalStepBudget)
	assert.Equal(t, []string{"TBD"}, cfg.Pipeline.PlaceholderSentinels)
	assert.Equal(t, "localhost", cfg.Server.Host, "unset fields keep defaults")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600))

	t.Setenv("DOCSMITH_SERVER_PORT", "9200")
	t.Setenv("DOCSMITH_ENGINE_MODEL", "gpt-4o-mini")
	t.Setenv("DOCSMITH_ENGINE_API_KEY", "env-secret")
	t.Setenv("DOCSMITH_CONFLUENCE_SPACE_ID", "ENG")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.Engine.Model)
	assert.Equal(t, "env-secret", cfg.Engine.APIKey.Value())
	assert.Equal(t, "ENG", cfg.Confluence.SpaceID)
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8900, cfg.Server.Port)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
