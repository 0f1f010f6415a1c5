package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChannelsConfig holds dynamic channel definitions (read/write). Each
// channel has its own history database and fact collection.
type ChannelsConfig struct {
	Channels map[string]ChannelEntry `yaml:"channels,omitempty"`
	// Default is used when no --channel flag is given.
	Default string `yaml:"default,omitempty"`
}

// ChannelEntry holds configuration for a specific channel.
type ChannelEntry struct {
	Collection  string `yaml:"collection"`
	Description string `yaml:"description,omitempty"`
	// Region overrides pipeline.region for this channel.
	Region string `yaml:"region,omitempty"`
}

// LoadChannels loads channel configuration from the .feather directory.
func LoadChannels(basePath string) (*ChannelsConfig, error) {
	data, err := os.ReadFile(ChannelsFilePath(basePath))
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return &ChannelsConfig{
			Channels: make(map[string]ChannelEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading channels file: %w", err)
	}

	var cfg ChannelsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing channels file: %w", err)
	}

	if cfg.Channels == nil {
		cfg.Channels = make(map[string]ChannelEntry)
	}

	return &cfg, nil
}

// Save writes the channels configuration to the channels file.
func (c *ChannelsConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling channels config: %w", err)
	}

	if err := os.WriteFile(ChannelsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing channels file: %w", err)
	}

	return nil
}

// Add adds a channel to the configuration. The first channel added
// becomes the default.
func (c *ChannelsConfig) Add(name string, entry ChannelEntry) {
	if c.Channels == nil {
		c.Channels = make(map[string]ChannelEntry)
	}
	c.Channels[name] = entry
	if c.Default == "" {
		c.Default = name
	}
}

// Remove removes a channel from the configuration.
func (c *ChannelsConfig) Remove(name string) {
	if c.Channels != nil {
		delete(c.Channels, name)
	}
	if c.Default == name {
		c.Default = ""
	}
}

// Get returns the configuration for a specific channel.
func (c *ChannelsConfig) Get(name string) (*ChannelEntry, error) {
	if len(c.Channels) == 0 {
		return nil, errors.New("no channels configured")
	}

	entry, ok := c.Channels[name]
	if !ok {
		names := c.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("channel %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Resolve returns the channel name to use: name when set, else the default.
func (c *ChannelsConfig) Resolve(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if c.Default != "" {
		return c.Default, nil
	}
	if len(c.Channels) == 1 {
		for only := range c.Channels {
			return only, nil
		}
	}
	return "", errors.New("no channel specified and no default channel configured (use --channel)")
}

// Names returns channel names in sorted order.
func (c *ChannelsConfig) Names() []string {
	names := make([]string, 0, len(c.Channels))
	for k := range c.Channels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Exists checks if a channel exists in the configuration.
func (c *ChannelsConfig) Exists(name string) bool {
	if c.Channels == nil {
		return false
	}
	_, ok := c.Channels[name]
	return ok
}

// ChannelsExists checks if a channels config file exists in the given path.
func ChannelsExists(basePath string) bool {
	_, err := os.Stat(ChannelsFilePath(basePath))
	return err == nil
}
