package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "DOCSMITH_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// compoundKeys maps flattened environment variable forms to their dotted
// config paths. Keys whose leaf name contains an underscore cannot be derived
// mechanically from the variable name, so they are listed here.
var compoundKeys = map[string]string{
	"confluence.base.url":            "confluence.base_url",
	"confluence.api.token":           "confluence.api_token",
	"confluence.space.id":            "confluence.space_id",
	"confluence.parent.page.id":      "confluence.parent_page_id",
	"source.repo.path":               "source.repo_path",
	"source.history.limit":           "source.history_limit",
	"engine.base.url":                "engine.base_url",
	"engine.api.key":                 "engine.api_key",
	"pipeline.total.step.budget":     "pipeline.total_step_budget",
	"pipeline.placeholder.sentinels": "pipeline.placeholder_sentinels",
}

// Load reads configuration from the given YAML file (if it exists), then
// overrides with DOCSMITH_* environment variables, on top of defaults.
// An empty configPath skips the file layer.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			content, err := readConfigFile(configPath)
			if err != nil {
				return nil, err
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	// DOCSMITH_ENGINE_MODEL -> engine.model, DOCSMITH_ENGINE_API_KEY -> engine.api_key
	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func transformEnvKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	key = strings.ReplaceAll(key, "_", ".")
	if mapped, ok := compoundKeys[key]; ok {
		return mapped
	}
	return key
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
