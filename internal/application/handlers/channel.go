package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
	embedder "github.com/ersonp/feather/internal/infrastructure/embedder/openai"
)

// CollectionOpener returns a collection manager bound to a collection and a
// function releasing it.
type CollectionOpener func(collection string) (ports.CollectionManager, func(), error)

// ChannelHandler manages channels. Each channel has its own history
// database and fact collection.
type ChannelHandler struct {
	basePath string
	open     CollectionOpener
	logger   *zap.Logger
}

// NewChannelHandler creates a new channel handler. open may be nil, in which
// case no fact collections are created or removed.
func NewChannelHandler(basePath string, open CollectionOpener, logger *zap.Logger) *ChannelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelHandler{
		basePath: basePath,
		open:     open,
		logger:   logger.Named("channels"),
	}
}

// ChannelInfo describes a configured channel.
type ChannelInfo struct {
	Name    string
	Default bool
	config.ChannelEntry
}

// List returns the configured channels sorted by name.
func (h *ChannelHandler) List() ([]ChannelInfo, error) {
	channels, err := config.LoadChannels(h.basePath)
	if err != nil {
		return nil, err
	}
	infos := make([]ChannelInfo, 0, len(channels.Channels))
	for _, name := range channels.Names() {
		infos = append(infos, ChannelInfo{
			Name:         name,
			Default:      name == channels.Default,
			ChannelEntry: channels.Channels[name],
		})
	}
	return infos, nil
}

// Create adds a channel, creating its fact collection and data directory.
func (h *ChannelHandler) Create(ctx context.Context, name, description, region string) (*ChannelInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("channel name is required")
	}
	clean := config.SanitizeChannelName(name)

	channels, err := config.LoadChannels(h.basePath)
	if err != nil {
		return nil, err
	}
	if channels.Exists(clean) {
		return nil, fmt.Errorf("channel %q already exists", clean)
	}

	entry := config.ChannelEntry{
		Collection:  config.GenerateCollectionName(clean),
		Description: description,
		Region:      region,
	}

	if err := h.withCollection(entry.Collection, func(cm ports.CollectionManager) error {
		return cm.EnsureCollection(ctx, embedder.VectorSize)
	}); err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	if err := os.MkdirAll(config.ChannelDir(h.basePath, clean), 0755); err != nil {
		return nil, fmt.Errorf("creating channel directory: %w", err)
	}

	channels.Add(clean, entry)
	if err := channels.Save(h.basePath); err != nil {
		return nil, fmt.Errorf("saving channels: %w", err)
	}

	h.logger.Info("channel created", zap.String("channel", clean), zap.String("collection", entry.Collection))
	return &ChannelInfo{Name: clean, Default: channels.Default == clean, ChannelEntry: entry}, nil
}

// Delete removes a channel, its fact collection and its history database.
func (h *ChannelHandler) Delete(ctx context.Context, name string) error {
	channels, err := config.LoadChannels(h.basePath)
	if err != nil {
		return err
	}
	entry, err := channels.Get(name)
	if err != nil {
		return err
	}

	if err := h.withCollection(entry.Collection, func(cm ports.CollectionManager) error {
		return cm.DeleteCollection(ctx)
	}); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	if err := os.RemoveAll(config.ChannelDir(h.basePath, name)); err != nil {
		return fmt.Errorf("removing channel directory: %w", err)
	}

	channels.Remove(name)
	if err := channels.Save(h.basePath); err != nil {
		return fmt.Errorf("saving channels: %w", err)
	}

	h.logger.Info("channel deleted", zap.String("channel", name))
	return nil
}

func (h *ChannelHandler) withCollection(collection string, fn func(ports.CollectionManager) error) error {
	if h.open == nil {
		return nil
	}
	cm, release, err := h.open(collection)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(cm)
}
