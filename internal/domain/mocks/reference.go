package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// ReferenceSource is a mock implementation of ports.ReferenceSource.
// Pages are keyed by normalized name.
type ReferenceSource struct {
	Pages map[string]*ports.ReferencePage
	Err   error

	mu      sync.Mutex
	Lookups []string
}

// Lookup returns the configured page or nil.
func (m *ReferenceSource) Lookup(ctx context.Context, name string) (*ports.ReferencePage, error) {
	m.mu.Lock()
	m.Lookups = append(m.Lookups, name)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Pages[entities.NormalizeName(name)], nil
}

// LookupCount returns the number of lookups performed.
func (m *ReferenceSource) LookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Lookups)
}

// MediaSearch is a mock implementation of ports.MediaSearch.
// Results are keyed by the exact query string.
type MediaSearch struct {
	Results map[string][]string
	Err     error

	mu      sync.Mutex
	Queries []string
}

// Search returns the configured URLs for the query.
func (m *MediaSearch) Search(ctx context.Context, query string, limit int) ([]string, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	urls := m.Results[query]
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

// Catalog is a mock implementation of ports.Catalog.
type Catalog struct {
	Names []string
	Err   error

	CallCount int
}

// Candidates returns the configured names.
func (m *Catalog) Candidates(ctx context.Context, limit int) ([]string, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.Names) > limit {
		return m.Names[:limit], nil
	}
	return m.Names, nil
}
