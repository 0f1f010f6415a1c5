package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
)

// HistoryStore is an in-memory mock implementation of ports.HistoryStore.
// Set the *Err fields to force failures.
type HistoryStore struct {
	mu       sync.Mutex
	subjects map[string]entities.Subject
	facts    map[string][]string
	records  []entities.HistoryRecord

	KnownErr   error
	AddErr     error
	FactsErr   error
	SaveErr    error
	RecordErr  error
	HistoryErr error
	RetractErr error

	// Call tracking
	KnownNamesCallCount int
	SaveFactsCallCount  int
}

// NewHistoryStore creates a store seeded with records, oldest first.
func NewHistoryStore(records ...entities.HistoryRecord) *HistoryStore {
	m := &HistoryStore{
		subjects: make(map[string]entities.Subject),
		facts:    make(map[string][]string),
	}
	for _, r := range records {
		m.subjects[r.Subject.NormalizedName] = r.Subject
		if len(r.Facts) > 0 {
			m.facts[r.Subject.NormalizedName] = append([]string(nil), r.Facts...)
		}
		m.records = append(m.records, r)
	}
	return m
}

func (m *HistoryStore) init() {
	if m.subjects == nil {
		m.subjects = make(map[string]entities.Subject)
		m.facts = make(map[string][]string)
	}
}

// IsKnown reports whether the subject was added.
func (m *HistoryStore) IsKnown(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.KnownErr != nil {
		return false, m.KnownErr
	}
	_, ok := m.subjects[entities.NormalizeName(name)]
	return ok, nil
}

// Add records the subject.
func (m *HistoryStore) Add(ctx context.Context, subject entities.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.init()
	m.subjects[subject.NormalizedName] = subject
	return nil
}

// KnownNames returns names ordered by the most recent post, then unposted names.
func (m *HistoryStore) KnownNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KnownNamesCallCount++
	if m.KnownErr != nil {
		return nil, m.KnownErr
	}
	seen := make(map[string]bool, len(m.subjects))
	names := make([]string, 0, len(m.subjects))
	for i := len(m.records) - 1; i >= 0; i-- {
		key := m.records[i].Subject.NormalizedName
		if seen[key] {
			continue
		}
		if _, ok := m.subjects[key]; !ok {
			continue
		}
		seen[key] = true
		names = append(names, m.subjects[key].Name)
	}
	rest := make([]string, 0)
	for key, s := range m.subjects {
		if !seen[key] {
			rest = append(rest, s.Name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...), nil
}

// GetFacts returns the stored facts.
func (m *HistoryStore) GetFacts(ctx context.Context, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FactsErr != nil {
		return nil, m.FactsErr
	}
	return append([]string(nil), m.facts[entities.NormalizeName(name)]...), nil
}

// SaveFacts stores facts.
func (m *HistoryStore) SaveFacts(ctx context.Context, name string, facts []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveFactsCallCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.init()
	m.facts[entities.NormalizeName(name)] = append([]string(nil), facts...)
	return nil
}

// RecordPost appends a record.
func (m *HistoryStore) RecordPost(ctx context.Context, record entities.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.records = append(m.records, record)
	return nil
}

// RecentHistory returns records newest first.
func (m *HistoryStore) RecentHistory(ctx context.Context, limit int) ([]entities.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if limit <= 0 {
		limit = len(m.records)
	}
	out := make([]entities.HistoryRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Retract removes everything about the subject.
func (m *HistoryStore) Retract(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RetractErr != nil {
		return m.RetractErr
	}
	key := entities.NormalizeName(name)
	if _, ok := m.subjects[key]; !ok {
		return entities.ErrNotFound
	}
	delete(m.subjects, key)
	delete(m.facts, key)
	kept := m.records[:0]
	for _, r := range m.records {
		if r.Subject.NormalizedName != key {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

// Stats summarizes the in-memory state.
func (m *HistoryStore) Stats(ctx context.Context) (entities.HistoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := entities.HistoryStats{
		Subjects:  len(m.subjects),
		Posts:     len(m.records),
		WithFacts: len(m.facts),
	}
	if n := len(m.records); n > 0 {
		stats.LastPostedAt = m.records[n-1].PostedAt
		stats.LastPostedFor = m.records[n-1].Subject.Name
	}
	return stats, nil
}

// Records returns a copy of all records, oldest first.
func (m *HistoryStore) Records() []entities.HistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.HistoryRecord(nil), m.records...)
}

// Record builds a history record for tests.
func Record(name string, postedAt time.Time, facts ...string) entities.HistoryRecord {
	return entities.HistoryRecord{
		ID:       "rec-" + entities.NormalizeName(name),
		Subject:  entities.NewSubject(name),
		Facts:    facts,
		PostedAt: postedAt,
	}
}
