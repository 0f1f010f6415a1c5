package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Feather Configuration

llm:
  provider: openai
  model: gpt-4o-mini
  timeout: 30s
  # api_key: your-api-key (or set OPENAI_API_KEY env var)
  # base_url: https://generativelanguage.googleapis.com/v1beta/openai/ (or set FEATHER_LLM_BASE_URL)

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  host: localhost
  port: 6334
  # api_key: your-api-key (for Qdrant Cloud)

redis:
  # url: redis://localhost:6379/0 (or set REDIS_URL env var)
  key_prefix: "feather:image:"
  ttl: 168h

wikimedia:
  language: en
  user_agent: feather/1.0 (bird channel curation)
  requests_per_sec: 5
  timeout: 10s
  catalog_category: Birds of Europe
  search_qualifier: bird

pipeline:
  region: Europe
  generative_attempts: 3
  generative_delay: 1s
  fact_attempts: 3
  fact_delay: 1s
  duplicate_threshold: 0.95
  exclusion_window: 30
  catalog_limit: 20
  quiz_weekday: sunday
  quiz_window: 30

publisher:
  format: text
  # output: posts.log (default stdout)

metrics:
  # textfile_path: /var/lib/node_exporter/feather.prom
`

// WriteDefault creates the .feather directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if a feather config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
