package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// Suggestion limits.
const (
	MinSuggestionLen = 2
	MaxSuggestionLen = 100
	// MaxSuggestionsPerHour caps submissions per user in a rolling hour.
	MaxSuggestionsPerHour = 5
)

// SuggestionService manages reader suggestions. Approved suggestions feed
// the priority tier of the CandidateSelector.
type SuggestionService struct {
	store      ports.SuggestionStore
	history    ports.HistoryStore
	classifier ports.Classifier
	validator  ports.SubjectValidator
	audit      ports.AuditLog
	now        func() time.Time
	logger     *zap.Logger
}

// SuggestionOption configures a SuggestionService.
type SuggestionOption func(*SuggestionService)

// WithApprovalValidator makes Approve refuse suggestions the validator
// rejects. Without it approval trusts the moderator.
func WithApprovalValidator(v ports.SubjectValidator) SuggestionOption {
	return func(s *SuggestionService) {
		s.validator = v
	}
}

// NewSuggestionService creates a new suggestion service. classifier and
// audit may be nil.
func NewSuggestionService(store ports.SuggestionStore, history ports.HistoryStore, classifier ports.Classifier, audit ports.AuditLog, logger *zap.Logger, opts ...SuggestionOption) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SuggestionService{
		store:      store,
		history:    history,
		classifier: classifier,
		audit:      audit,
		now:        time.Now,
		logger:     logger.Named("suggestions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores a pending suggestion.
func (s *SuggestionService) Submit(ctx context.Context, userID, username, name string) (*entities.Suggestion, error) {
	name = strings.Join(strings.Fields(name), " ")
	if n := utf8.RuneCountInString(name); n < MinSuggestionLen || n > MaxSuggestionLen {
		return nil, fmt.Errorf("name must be %d-%d characters: %w", MinSuggestionLen, MaxSuggestionLen, entities.ErrValidationRejected)
	}
	subject := entities.NewSubject(name)
	if subject.NormalizedName == "" {
		return nil, fmt.Errorf("name %q has no letters: %w", name, entities.ErrValidationRejected)
	}
	if s.classifier != nil && s.classifier.RejectsName(name) {
		return nil, fmt.Errorf("%q is not a species name: %w", name, entities.ErrValidationRejected)
	}

	now := s.now()
	recent, err := s.store.CountSuggestionsSince(ctx, userID, now.Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("counting suggestions: %w", err)
	}
	if recent >= MaxSuggestionsPerHour {
		return nil, fmt.Errorf("%d suggestions in the last hour: %w", recent, entities.ErrRateLimited)
	}

	existing, err := s.store.FindSuggestionByUser(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("finding suggestion: %w", err)
	}
	if existing != nil {
		return existing, fmt.Errorf("%q already suggested: %w", name, entities.ErrDuplicate)
	}

	if s.history != nil {
		known, err := s.history.IsKnown(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("checking history: %w", err)
		}
		if known {
			return nil, fmt.Errorf("%q already published: %w", name, entities.ErrDuplicate)
		}
	}

	if username == "" {
		username = "user_" + userID
	}
	sg := &entities.Suggestion{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		Subject:   subject,
		Status:    entities.SuggestionPending,
		CreatedAt: now,
	}
	if err := s.store.SaveSuggestion(ctx, sg); err != nil {
		return nil, fmt.Errorf("saving suggestion: %w", err)
	}

	s.logAction(ctx, entities.ActionSuggestionReceived, sg.Subject.Name, map[string]any{"id": sg.ID, "user": userID})
	s.logger.Info("suggestion received", zap.String("subject", sg.Subject.Name), zap.String("user", username))
	return sg, nil
}

// Pending returns pending suggestions, oldest first.
func (s *SuggestionService) Pending(ctx context.Context, limit int) ([]entities.Suggestion, error) {
	return s.store.ListSuggestions(ctx, entities.SuggestionPending, limit)
}

// Approved returns approved suggestions waiting to be published.
func (s *SuggestionService) Approved(ctx context.Context, limit int) ([]entities.Suggestion, error) {
	return s.store.ListSuggestions(ctx, entities.SuggestionApproved, limit)
}

// ByUser returns a user's suggestions, newest first.
func (s *SuggestionService) ByUser(ctx context.Context, userID string, limit int) ([]entities.Suggestion, error) {
	return s.store.ListSuggestionsByUser(ctx, userID, limit)
}

// Approve promotes a pending suggestion to the priority tier.
func (s *SuggestionService) Approve(ctx context.Context, id string) (*entities.Suggestion, error) {
	return s.decide(ctx, id, entities.SuggestionApproved, "")
}

// Reject declines a pending suggestion.
func (s *SuggestionService) Reject(ctx context.Context, id, reason string) (*entities.Suggestion, error) {
	return s.decide(ctx, id, entities.SuggestionRejected, reason)
}

// MarkUsed records that an approved suggestion was published.
func (s *SuggestionService) MarkUsed(ctx context.Context, id string) error {
	if err := s.store.UpdateSuggestionStatus(ctx, id, entities.SuggestionUsed, "", s.now()); err != nil {
		return fmt.Errorf("marking suggestion %s used: %w", id, err)
	}
	return nil
}

func (s *SuggestionService) decide(ctx context.Context, id string, status entities.SuggestionStatus, reason string) (*entities.Suggestion, error) {
	sg, err := s.store.FindSuggestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding suggestion: %w", err)
	}
	if sg == nil {
		return nil, fmt.Errorf("suggestion %s: %w", id, entities.ErrNotFound)
	}
	if sg.Status != entities.SuggestionPending {
		return nil, fmt.Errorf("suggestion %s is %s: %w", id, sg.Status, entities.ErrValidationRejected)
	}
	if status == entities.SuggestionApproved && s.validator != nil {
		if err := s.validator.Validate(ctx, sg.Subject.Name); err != nil {
			s.logger.Info("approval refused", zap.String("id", id), zap.String("subject", sg.Subject.Name), zap.Error(err))
			return nil, fmt.Errorf("suggestion %s (%s) is not a species: %w", id, sg.Subject.Name, err)
		}
	}

	at := s.now()
	if err := s.store.UpdateSuggestionStatus(ctx, id, status, reason, at); err != nil {
		return nil, fmt.Errorf("updating suggestion: %w", err)
	}
	sg.Status = status
	sg.Reason = reason
	sg.DecidedAt = &at

	s.logAction(ctx, entities.ActionSuggestionDecided, sg.Subject.Name, map[string]any{"id": id, "status": string(status), "reason": reason})
	return sg, nil
}

func (s *SuggestionService) logAction(ctx context.Context, action, subject string, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, action, subject, details); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
