// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/domain/services"
)

// ContentProducer produces one content unit per call.
type ContentProducer interface {
	Run(ctx context.Context) (*entities.ContentUnit, error)
}

// PostHandler runs the pipeline, delivers the result and records it. Nothing
// is persisted unless delivery succeeds.
type PostHandler struct {
	producer    ContentProducer
	publisher   ports.Publisher
	history     ports.HistoryStore
	embedder    ports.Embedder
	index       ports.FactIndex
	suggestions *services.SuggestionService
	audit       ports.AuditLog
	metrics     ports.Metrics
	now         func() time.Time
	logger      *zap.Logger
}

// PostOption configures a PostHandler.
type PostOption func(*PostHandler)

// WithPostIndex indexes published facts for near-duplicate detection.
func WithPostIndex(embedder ports.Embedder, index ports.FactIndex) PostOption {
	return func(h *PostHandler) {
		if embedder != nil && index != nil {
			h.embedder = embedder
			h.index = index
		}
	}
}

// WithPostSuggestions marks suggestions used once their subject is posted.
func WithPostSuggestions(s *services.SuggestionService) PostOption {
	return func(h *PostHandler) {
		h.suggestions = s
	}
}

// WithPostAudit sets the audit log.
func WithPostAudit(audit ports.AuditLog) PostOption {
	return func(h *PostHandler) {
		h.audit = audit
	}
}

// WithPostMetrics sets the metrics recorder.
func WithPostMetrics(m ports.Metrics) PostOption {
	return func(h *PostHandler) {
		h.metrics = m
	}
}

// WithPostLogger sets the logger.
func WithPostLogger(logger *zap.Logger) PostOption {
	return func(h *PostHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewPostHandler creates a new post handler.
func NewPostHandler(producer ContentProducer, publisher ports.Publisher, history ports.HistoryStore, opts ...PostOption) *PostHandler {
	h := &PostHandler{
		producer:  producer,
		publisher: publisher,
		history:   history,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("post")
	return h
}

// PostOptions controls a post run.
type PostOptions struct {
	DryRun bool // Produce the unit without publishing or recording it
}

// PostResult contains the result of a post run.
type PostResult struct {
	Unit      *entities.ContentUnit
	RecordID  string
	Published bool
}

// Handle produces and publishes one content unit.
func (h *PostHandler) Handle(ctx context.Context, opts PostOptions) (*PostResult, error) {
	unit, err := h.producer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("producing content: %w", err)
	}
	result := &PostResult{Unit: unit}

	if opts.DryRun {
		return result, nil
	}

	if err := h.publisher.PublishContent(ctx, unit); err != nil {
		return result, fmt.Errorf("publishing %s: %w", unit.Subject.Name, err)
	}
	result.Published = true
	if h.metrics != nil {
		h.metrics.Published("content")
	}

	id, err := h.record(ctx, unit)
	if err != nil {
		return result, err
	}
	result.RecordID = id

	h.indexFacts(ctx, unit)
	h.markSuggestion(ctx, unit)
	h.logAction(ctx, unit, id)

	return result, nil
}

// record persists the subject, its facts and the post record.
func (h *PostHandler) record(ctx context.Context, unit *entities.ContentUnit) (string, error) {
	if err := h.history.Add(ctx, unit.Subject); err != nil {
		return "", fmt.Errorf("recording subject: %w", err)
	}
	if len(unit.Facts) > 0 && unit.FactSource != entities.FactSourceStored {
		if err := h.history.SaveFacts(ctx, unit.Subject.Name, unit.Facts); err != nil {
			return "", fmt.Errorf("saving facts: %w", err)
		}
	}

	rec := entities.HistoryRecord{
		ID:       uuid.New().String(),
		Subject:  unit.Subject,
		Facts:    unit.Facts,
		ImageURL: unit.Image(),
		PostedAt: h.now(),
	}
	if err := h.history.RecordPost(ctx, rec); err != nil {
		return "", fmt.Errorf("recording post: %w", err)
	}
	return rec.ID, nil
}

func (h *PostHandler) indexFacts(ctx context.Context, unit *entities.ContentUnit) {
	if h.index == nil || len(unit.Facts) == 0 {
		return
	}
	vectors, err := h.embedder.EmbedBatch(ctx, unit.Facts)
	if err == nil {
		err = h.index.Index(ctx, unit.Subject.Name, unit.Facts, vectors)
	}
	if err != nil {
		h.logger.Warn("indexing facts failed", zap.String("subject", unit.Subject.Name), zap.Error(err))
	}
}

func (h *PostHandler) markSuggestion(ctx context.Context, unit *entities.ContentUnit) {
	if h.suggestions == nil || unit.SuggestionID == "" {
		return
	}
	if err := h.suggestions.MarkUsed(ctx, unit.SuggestionID); err != nil {
		h.logger.Warn("marking suggestion used failed", zap.String("id", unit.SuggestionID), zap.Error(err))
	}
}

func (h *PostHandler) logAction(ctx context.Context, unit *entities.ContentUnit, id string) {
	if h.audit == nil {
		return
	}
	details := map[string]any{
		"record_id": id,
		"tier":      string(unit.CandidateTier),
		"media":     string(unit.MediaSource),
		"facts":     string(unit.FactSource),
		"fallback":  unit.GeneratedByFallback,
	}
	if unit.Repeated {
		details["repeated"] = true
	}
	if err := h.audit.LogAction(ctx, entities.ActionPostPublished, unit.Subject.Name, details); err != nil {
		h.logger.Warn("writing audit log failed", zap.Error(err))
	}
}
