package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
)

// SuggestionStore is an in-memory mock implementation of ports.SuggestionStore.
type SuggestionStore struct {
	mu    sync.Mutex
	items []entities.Suggestion

	SaveErr   error
	ListErr   error
	UpdateErr error
}

// SaveSuggestion stores the suggestion.
func (m *SuggestionStore) SaveSuggestion(ctx context.Context, s *entities.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.items = append(m.items, *s)
	return nil
}

// FindSuggestion finds a suggestion by ID.
func (m *SuggestionStore) FindSuggestion(ctx context.Context, id string) (*entities.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			s := m.items[i]
			return &s, nil
		}
	}
	return nil, nil
}

// FindSuggestionByUser finds a user's suggestion for a subject.
func (m *SuggestionStore) FindSuggestionByUser(ctx context.Context, userID, name string) (*entities.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entities.NormalizeName(name)
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].Subject.NormalizedName == key {
			s := m.items[i]
			return &s, nil
		}
	}
	return nil, nil
}

// ListSuggestions returns suggestions with the status, oldest first.
func (m *SuggestionStore) ListSuggestions(ctx context.Context, status entities.SuggestionStatus, limit int) ([]entities.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []entities.Suggestion
	for _, s := range m.items {
		if s.Status == status {
			out = append(out, s)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListSuggestionsByUser returns a user's suggestions, newest first.
func (m *SuggestionStore) ListSuggestionsByUser(ctx context.Context, userID string, limit int) ([]entities.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []entities.Suggestion
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CountSuggestionsSince counts a user's suggestions created at or after since.
func (m *SuggestionStore) CountSuggestionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.items {
		if s.UserID == userID && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// UpdateSuggestionStatus changes the status of a suggestion.
func (m *SuggestionStore) UpdateSuggestionStatus(ctx context.Context, id string, status entities.SuggestionStatus, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			m.items[i].Reason = reason
			m.items[i].DecidedAt = &at
			return nil
		}
	}
	return entities.ErrNotFound
}

// AuditLog is a mock implementation of ports.AuditLog.
type AuditLog struct {
	mu      sync.Mutex
	Entries []entities.AuditEntry
	Err     error
}

// LogAction records the entry.
func (m *AuditLog) LogAction(ctx context.Context, action string, subject string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entities.AuditEntry{
		ID:        int64(len(m.Entries) + 1),
		Action:    action,
		Subject:   subject,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLogByAction returns entries with the action, newest first.
func (m *AuditLog) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AuditEntry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].Action == action {
			out = append(out, m.Entries[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
