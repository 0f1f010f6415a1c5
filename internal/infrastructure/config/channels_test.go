package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelsConfig_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, ChannelsExists(dir))

	cfg, err := LoadChannels(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Channels)

	cfg.Add("birds", ChannelEntry{Collection: GenerateCollectionName("birds"), Description: "Daily birds"})
	cfg.Add("owls", ChannelEntry{Collection: GenerateCollectionName("owls"), Region: "Scandinavia"})
	require.NoError(t, cfg.Save(dir))
	assert.True(t, ChannelsExists(dir))

	loaded, err := LoadChannels(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"birds", "owls"}, loaded.Names())
	assert.Equal(t, "birds", loaded.Default)

	entry, err := loaded.Get("owls")
	require.NoError(t, err)
	assert.Equal(t, "feather_owls", entry.Collection)
	assert.Equal(t, "Scandinavia", entry.Region)
}

func TestChannelsConfig_Get(t *testing.T) {
	empty := &ChannelsConfig{}
	_, err := empty.Get("birds")
	assert.ErrorContains(t, err, "no channels configured")

	cfg := &ChannelsConfig{}
	cfg.Add("birds", ChannelEntry{Collection: "feather_birds"})
	_, err = cfg.Get("owls")
	assert.ErrorContains(t, err, `channel "owls" not found (available: birds)`)
}

func TestChannelsConfig_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ChannelsConfig
		flag    string
		want    string
		wantErr bool
	}{
		{name: "flag wins", cfg: &ChannelsConfig{Default: "birds"}, flag: "owls", want: "owls"},
		{name: "default", cfg: &ChannelsConfig{Default: "birds"}, want: "birds"},
		{name: "single channel", cfg: &ChannelsConfig{Channels: map[string]ChannelEntry{"owls": {}}}, want: "owls"},
		{name: "ambiguous", cfg: &ChannelsConfig{Channels: map[string]ChannelEntry{"owls": {}, "birds": {}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Resolve(tt.flag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChannelsConfig_Remove(t *testing.T) {
	cfg := &ChannelsConfig{}
	cfg.Add("birds", ChannelEntry{})
	cfg.Add("owls", ChannelEntry{})

	cfg.Remove("birds")

	assert.False(t, cfg.Exists("birds"))
	assert.True(t, cfg.Exists("owls"))
	assert.Empty(t, cfg.Default)
}
