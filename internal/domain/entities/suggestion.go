package entities

import "time"

// SuggestionStatus is the lifecycle state of a user suggestion.
type SuggestionStatus string

// Suggestion states.
const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
	SuggestionUsed     SuggestionStatus = "used"
)

// Suggestion is a subject proposed by a reader. Approved suggestions feed the
// priority tier of candidate selection.
type Suggestion struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Username  string           `json:"username,omitempty"`
	Subject   Subject          `json:"subject"`
	Status    SuggestionStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	DecidedAt *time.Time       `json:"decided_at,omitempty"`
}
