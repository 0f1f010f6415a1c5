package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/domain/services"
)

// DefaultQuizWindow is the number of recent records a quiz draws from.
const DefaultQuizWindow = 30

// ErrNotEnoughHistory is returned when neither a fact quiz nor a guess quiz
// can be built from the recent history.
var ErrNotEnoughHistory = errors.New("not enough history for a quiz")

// QuizHandler builds a quiz round from recent history and publishes it.
type QuizHandler struct {
	history   ports.HistoryStore
	composer  *services.QuizComposer
	publisher ports.Publisher
	audit     ports.AuditLog
	metrics   ports.Metrics
	window    int
	logger    *zap.Logger
}

// NewQuizHandler creates a new quiz handler. audit and metrics may be nil;
// a window of 0 uses DefaultQuizWindow.
func NewQuizHandler(history ports.HistoryStore, composer *services.QuizComposer, publisher ports.Publisher, audit ports.AuditLog, metrics ports.Metrics, window int, logger *zap.Logger) *QuizHandler {
	if window <= 0 {
		window = DefaultQuizWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizHandler{
		history:   history,
		composer:  composer,
		publisher: publisher,
		audit:     audit,
		metrics:   metrics,
		window:    window,
		logger:    logger.Named("quiz"),
	}
}

// QuizOptions controls a quiz run.
type QuizOptions struct {
	DryRun bool
}

// QuizResult contains the result of a quiz run.
type QuizResult struct {
	Quiz      *entities.QuizRound
	Published bool
}

// Handle composes a fact quiz, falling back to the recency quiz.
func (h *QuizHandler) Handle(ctx context.Context, opts QuizOptions) (*QuizResult, error) {
	records, err := h.history.RecentHistory(ctx, h.window)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	quiz := h.composer.Compose(ctx, records)
	if quiz == nil {
		h.logger.Info("not enough facts for a fact quiz, trying guess quiz", zap.Int("records", len(records)))
		quiz = h.composer.ComposeGuess(ctx, records)
	}
	if quiz == nil {
		return nil, ErrNotEnoughHistory
	}

	result := &QuizResult{Quiz: quiz}
	if opts.DryRun {
		return result, nil
	}

	if err := h.publisher.PublishQuiz(ctx, quiz); err != nil {
		return result, fmt.Errorf("publishing quiz: %w", err)
	}
	result.Published = true
	if h.metrics != nil {
		h.metrics.Published("quiz")
	}

	if h.audit != nil {
		details := map[string]any{
			"kind":     string(quiz.Kind),
			"question": quiz.Question,
		}
		if err := h.audit.LogAction(ctx, entities.ActionQuizPublished, quiz.CorrectSubject.Name, details); err != nil {
			h.logger.Warn("writing audit log failed", zap.Error(err))
		}
	}
	return result, nil
}
