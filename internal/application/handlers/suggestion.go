package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/services"
)

// SuggestionHandler handles reader suggestions and their moderation.
type SuggestionHandler struct {
	service *services.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(service *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		service: service,
	}
}

// Submit records a suggestion from a user.
func (h *SuggestionHandler) Submit(ctx context.Context, userID, username, name string) (*entities.Suggestion, error) {
	return h.service.Submit(ctx, userID, username, name)
}

// List returns suggestions with the given status. An empty status lists
// pending suggestions.
func (h *SuggestionHandler) List(ctx context.Context, status entities.SuggestionStatus, limit int) ([]entities.Suggestion, error) {
	switch status {
	case "", entities.SuggestionPending:
		return h.service.Pending(ctx, limit)
	case entities.SuggestionApproved:
		return h.service.Approved(ctx, limit)
	default:
		return nil, fmt.Errorf("cannot list %q suggestions: %w", status, entities.ErrValidationRejected)
	}
}

// ByUser returns a user's suggestions, newest first.
func (h *SuggestionHandler) ByUser(ctx context.Context, userID string, limit int) ([]entities.Suggestion, error) {
	return h.service.ByUser(ctx, userID, limit)
}

// Decision is a moderation decision.
type Decision string

// Decisions.
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Decide approves or rejects a pending suggestion.
func (h *SuggestionHandler) Decide(ctx context.Context, id string, decision Decision, reason string) (*entities.Suggestion, error) {
	switch decision {
	case DecisionApprove:
		return h.service.Approve(ctx, id)
	case DecisionReject:
		return h.service.Reject(ctx, id, reason)
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", decision, entities.ErrValidationRejected)
	}
}
