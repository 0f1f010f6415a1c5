package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// FactIndex is a mock implementation of ports.FactIndex.
type FactIndex struct {
	Matches    []ports.FactMatch
	SimilarErr error
	IndexErr   error
	DeleteErr  error

	mu       sync.Mutex
	Indexed  map[string][]string
	Deleted  []string
	Searches int
}

// Index records the facts.
func (m *FactIndex) Index(ctx context.Context, subject string, facts []string, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IndexErr != nil {
		return m.IndexErr
	}
	if m.Indexed == nil {
		m.Indexed = make(map[string][]string)
	}
	m.Indexed[entities.NormalizeName(subject)] = append([]string(nil), facts...)
	return nil
}

// Similar returns the configured matches.
func (m *FactIndex) Similar(ctx context.Context, vector []float32, limit int) ([]ports.FactMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches++
	if m.SimilarErr != nil {
		return nil, m.SimilarErr
	}
	return m.Matches, nil
}

// DeleteSubject records the deletion.
func (m *FactIndex) DeleteSubject(ctx context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, entities.NormalizeName(subject))
	return nil
}
