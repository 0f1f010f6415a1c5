package handlers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Run kinds.
const (
	KindContent = "content"
	KindQuiz    = "quiz"
)

// CadenceHandler decides what a scheduled run publishes: a quiz on the
// quiz weekday, a content unit on every other day.
type CadenceHandler struct {
	post    *PostHandler
	quiz    *QuizHandler
	weekday time.Weekday
	logger  *zap.Logger
}

// NewCadenceHandler creates a new cadence handler.
func NewCadenceHandler(post *PostHandler, quiz *QuizHandler, weekday time.Weekday, logger *zap.Logger) *CadenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CadenceHandler{
		post:    post,
		quiz:    quiz,
		weekday: weekday,
		logger:  logger.Named("cadence"),
	}
}

// CadenceResult reports what a scheduled run did. On a quiz day with too
// little history nothing is published and Skipped is set.
type CadenceResult struct {
	Kind    string
	Post    *PostResult
	Quiz    *QuizResult
	Skipped bool
}

// Handle runs the action scheduled for now.
func (h *CadenceHandler) Handle(ctx context.Context, now time.Time, dryRun bool) (*CadenceResult, error) {
	if now.Weekday() != h.weekday {
		res, err := h.post.Handle(ctx, PostOptions{DryRun: dryRun})
		return &CadenceResult{Kind: KindContent, Post: res}, err
	}

	res, err := h.quiz.Handle(ctx, QuizOptions{DryRun: dryRun})
	if errors.Is(err, ErrNotEnoughHistory) {
		h.logger.Info("quiz day, but history is too short for a quiz")
		return &CadenceResult{Kind: KindQuiz, Skipped: true}, nil
	}
	return &CadenceResult{Kind: KindQuiz, Quiz: res}, err
}
