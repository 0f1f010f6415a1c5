package entities

import "time"

// Audit actions.
const (
	ActionPostPublished      = "post.published"
	ActionQuizPublished      = "quiz.published"
	ActionHistoryRetracted   = "history.retracted"
	ActionHistoryImported    = "history.imported"
	ActionSuggestionDecided  = "suggestion.decided"
	ActionSuggestionReceived = "suggestion.received"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Subject   string         `json:"subject,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
