// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for feather configuration.
	DefaultConfigDir = ".feather"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultChannelsFile is the default channels file name.
	DefaultChannelsFile = "channels.yaml"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Embedder  EmbedderConfig  `yaml:"embedder,omitempty"`
	Qdrant    QdrantConfig    `yaml:"qdrant,omitempty"`
	SQLite    SQLiteConfig    `yaml:"sqlite,omitempty"`
	Redis     RedisConfig     `yaml:"redis,omitempty"`
	Wikimedia WikimediaConfig `yaml:"wikimedia,omitempty"`
	Pipeline  PipelineConfig  `yaml:"pipeline,omitempty"`
	Publisher PublisherConfig `yaml:"publisher,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
}

// LLMConfig holds configuration for the text generation provider. Any
// OpenAI-compatible endpoint works through BaseURL.
type LLMConfig struct {
	Provider string        `yaml:"provider,omitempty"`
	Model    string        `yaml:"model,omitempty"`
	APIKey   string        `yaml:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
// An empty Provider disables fact indexing.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
// An empty Host disables the fact index.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-channel databases, this is computed dynamically using SQLitePathForChannel.
	Path string `yaml:"path,omitempty"`
}

// RedisConfig holds configuration for the image cache.
// An empty URL disables the cache.
type RedisConfig struct {
	URL       string        `yaml:"url,omitempty"`
	KeyPrefix string        `yaml:"key_prefix,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`
}

// WikimediaConfig holds configuration for the reference encyclopedia,
// the media repository and the category catalog.
type WikimediaConfig struct {
	Language        string        `yaml:"language,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	RequestsPerSec  float64       `yaml:"requests_per_sec,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	CatalogCategory string        `yaml:"catalog_category,omitempty"`
	SearchQualifier string        `yaml:"search_qualifier,omitempty"`
}

// PipelineConfig tunes attempt budgets and content rules.
type PipelineConfig struct {
	Region             string        `yaml:"region,omitempty"`
	GenerativeAttempts int           `yaml:"generative_attempts,omitempty"`
	GenerativeDelay    time.Duration `yaml:"generative_delay,omitempty"`
	FactAttempts       int           `yaml:"fact_attempts,omitempty"`
	FactDelay          time.Duration `yaml:"fact_delay,omitempty"`
	DuplicateThreshold float32       `yaml:"duplicate_threshold,omitempty"`
	ExclusionWindow    int           `yaml:"exclusion_window,omitempty"`
	CatalogLimit       int           `yaml:"catalog_limit,omitempty"`
	QuizWeekday        string        `yaml:"quiz_weekday,omitempty"`
	QuizWindow         int           `yaml:"quiz_window,omitempty"`
}

// PublisherConfig selects the delivery sink.
type PublisherConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
	// Output is a file path; empty means stdout.
	Output string `yaml:"output,omitempty"`
}

// MetricsConfig configures the prometheus textfile written after each run.
// An empty TextfilePath disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Redis: RedisConfig{
			KeyPrefix: "feather:image:",
			TTL:       7 * 24 * time.Hour,
		},
		Wikimedia: WikimediaConfig{
			Language:        "en",
			UserAgent:       "feather/1.0 (bird channel curation)",
			RequestsPerSec:  5,
			Timeout:         10 * time.Second,
			CatalogCategory: "Birds of Europe",
			SearchQualifier: "bird",
		},
		Pipeline: PipelineConfig{
			Region:             "Europe",
			GenerativeAttempts: 3,
			GenerativeDelay:    time.Second,
			FactAttempts:       3,
			FactDelay:          time.Second,
			DuplicateThreshold: 0.95,
			ExclusionWindow:    30,
			CatalogLimit:       20,
			QuizWeekday:        "sunday",
			QuizWindow:         30,
		},
		Publisher: PublisherConfig{
			Format: "text",
		},
	}
}

// Load loads configuration from the .feather directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'feather init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if u := os.Getenv("FEATHER_LLM_BASE_URL"); u != "" {
		c.LLM.BaseURL = u
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
	if u := os.Getenv("REDIS_URL"); u != "" {
		c.Redis.URL = u
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	p := c.Pipeline
	switch {
	case p.GenerativeAttempts < 1:
		return fmt.Errorf("pipeline.generative_attempts must be at least 1, got %d", p.GenerativeAttempts)
	case p.FactAttempts < 1:
		return fmt.Errorf("pipeline.fact_attempts must be at least 1, got %d", p.FactAttempts)
	case p.GenerativeDelay < 0 || p.FactDelay < 0:
		return fmt.Errorf("pipeline delays must not be negative")
	case p.DuplicateThreshold < 0 || p.DuplicateThreshold > 1:
		return fmt.Errorf("pipeline.duplicate_threshold must be within [0, 1], got %v", p.DuplicateThreshold)
	}
	if _, err := p.Weekday(); err != nil {
		return err
	}
	switch c.Publisher.Format {
	case "text", "json":
	default:
		return fmt.Errorf("publisher.format must be text or json, got %q", c.Publisher.Format)
	}
	return nil
}

// Weekday parses QuizWeekday.
func (p PipelineConfig) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(p.QuizWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("pipeline.quiz_weekday: unknown weekday %q", p.QuizWeekday)
}

// ConfigDir returns the path to the .feather config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// ChannelsFilePath returns the path to the channels file.
func ChannelsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultChannelsFile)
}

// SanitizeChannelName converts a channel name to a valid collection suffix.
func SanitizeChannelName(name string) string {
	// Convert to lowercase
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	// Remove any characters that aren't alphanumeric or underscore
	name = reNonAlphanumeric.ReplaceAllString(name, "")

	// Remove consecutive underscores
	name = reMultipleUnderscores.ReplaceAllString(name, "_")

	// Trim leading/trailing underscores
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// GenerateCollectionName creates a fact collection name for a channel.
func GenerateCollectionName(channelName string) string {
	return "feather_" + SanitizeChannelName(channelName)
}

// SQLitePathForChannel returns the SQLite database path for a given channel.
func SQLitePathForChannel(basePath, channelName string) string {
	return filepath.Join(ChannelDir(basePath, channelName), "feather.db")
}

// RunLockPathForChannel returns the lock file guarding publishing runs of a channel.
func RunLockPathForChannel(basePath, channelName string) string {
	return filepath.Join(ChannelDir(basePath, channelName), "run.lock")
}

// ChannelDir returns the directory path for a given channel.
func ChannelDir(basePath, channelName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "channels", SanitizeChannelName(channelName))
}
