package ports

import (
	"context"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
)

// HistoryStore persists published subjects, their facts and post records.
// Implementations must tolerate concurrent reads.
type HistoryStore interface {
	// IsKnown reports whether a subject with the same normalized name exists.
	IsKnown(ctx context.Context, name string) (bool, error)

	// Add records a subject as known. Adding an existing subject is a no-op.
	Add(ctx context.Context, subject entities.Subject) error

	// KnownNames returns all known subject names, most recently posted first.
	KnownNames(ctx context.Context) ([]string, error)

	// GetFacts returns stored facts for a subject (empty if none).
	GetFacts(ctx context.Context, name string) ([]string, error)

	// SaveFacts replaces the stored facts for a subject.
	SaveFacts(ctx context.Context, name string, facts []string) error

	// RecordPost appends a publication record.
	RecordPost(ctx context.Context, record entities.HistoryRecord) error

	// RecentHistory returns up to limit records, newest first. A limit of 0
	// returns every record.
	RecentHistory(ctx context.Context, limit int) ([]entities.HistoryRecord, error)

	// Retract removes a subject, its facts and its post records.
	// Returns entities.ErrNotFound when the subject is unknown.
	Retract(ctx context.Context, name string) error

	// Stats summarizes the stored history.
	Stats(ctx context.Context) (entities.HistoryStats, error)
}

// SuggestionStore persists reader suggestions.
type SuggestionStore interface {
	SaveSuggestion(ctx context.Context, s *entities.Suggestion) error
	FindSuggestion(ctx context.Context, id string) (*entities.Suggestion, error)
	FindSuggestionByUser(ctx context.Context, userID, name string) (*entities.Suggestion, error)
	// ListSuggestions returns suggestions with the status, oldest first.
	// A limit of 0 means no limit.
	ListSuggestions(ctx context.Context, status entities.SuggestionStatus, limit int) ([]entities.Suggestion, error)
	// ListSuggestionsByUser returns a user's suggestions, newest first.
	ListSuggestionsByUser(ctx context.Context, userID string, limit int) ([]entities.Suggestion, error)
	// CountSuggestionsSince counts a user's suggestions created at or after since.
	CountSuggestionsSince(ctx context.Context, userID string, since time.Time) (int, error)
	UpdateSuggestionStatus(ctx context.Context, id string, status entities.SuggestionStatus, reason string, at time.Time) error
}

// AuditLog records actions for later inspection.
type AuditLog interface {
	LogAction(ctx context.Context, action string, subject string, details map[string]any) error
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
