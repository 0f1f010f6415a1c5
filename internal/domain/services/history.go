package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// HistoryService reads and corrects the publication history.
type HistoryService struct {
	history ports.HistoryStore
	index   ports.FactIndex
	cache   ports.ImageCache
	audit   ports.AuditLog
	logger  *zap.Logger
}

// NewHistoryService creates a new history service. index, cache and audit
// may be nil.
func NewHistoryService(history ports.HistoryStore, index ports.FactIndex, cache ports.ImageCache, audit ports.AuditLog, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		history: history,
		index:   index,
		cache:   cache,
		audit:   audit,
		logger:  logger.Named("history"),
	}
}

// Recent returns up to limit records, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]entities.HistoryRecord, error) {
	records, err := s.history.RecentHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return records, nil
}

// Facts returns the stored facts of a subject.
func (s *HistoryService) Facts(ctx context.Context, name string) ([]string, error) {
	facts, err := s.history.GetFacts(ctx, entities.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("reading facts: %w", err)
	}
	return facts, nil
}

// Stats summarizes the history.
func (s *HistoryService) Stats(ctx context.Context) (entities.HistoryStats, error) {
	stats, err := s.history.Stats(ctx)
	if err != nil {
		return entities.HistoryStats{}, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

// Retract removes a subject so it may be selected again. The history store
// is authoritative; index and cache cleanup failures are logged.
func (s *HistoryService) Retract(ctx context.Context, name string, reason string) error {
	subject := entities.NewSubject(name)
	if subject.IsZero() {
		return fmt.Errorf("empty subject: %w", entities.ErrValidationRejected)
	}
	if err := s.history.Retract(ctx, subject.NormalizedName); err != nil {
		return fmt.Errorf("retracting %s: %w", subject.Name, err)
	}

	if s.index != nil {
		if err := s.index.DeleteSubject(ctx, subject.Name); err != nil {
			s.logger.Warn("removing indexed facts failed", zap.String("subject", subject.Name), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.DeleteImage(ctx, subject.NormalizedName); err != nil {
			s.logger.Warn("evicting cached image failed", zap.String("subject", subject.Name), zap.Error(err))
		}
	}
	if s.audit != nil {
		if err := s.audit.LogAction(ctx, entities.ActionHistoryRetracted, subject.Name, map[string]any{"reason": reason}); err != nil {
			s.logger.Warn("audit log failed", zap.Error(err))
		}
	}

	s.logger.Info("subject retracted", zap.String("subject", subject.Name))
	return nil
}
