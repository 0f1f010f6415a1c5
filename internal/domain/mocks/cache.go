package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/feather/internal/domain/entities"
)

// ImageCache is an in-memory mock implementation of ports.ImageCache.
type ImageCache struct {
	mu     sync.Mutex
	images map[string]string

	GetErr error
	SetErr error
}

// GetImage returns the cached URL or "".
func (m *ImageCache) GetImage(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.images[entities.NormalizeName(name)], nil
}

// SetImage caches the URL.
func (m *ImageCache) SetImage(ctx context.Context, name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.images == nil {
		m.images = make(map[string]string)
	}
	m.images[entities.NormalizeName(name)] = url
	return nil
}

// DeleteImage drops the cached URL.
func (m *ImageCache) DeleteImage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, entities.NormalizeName(name))
	return nil
}
