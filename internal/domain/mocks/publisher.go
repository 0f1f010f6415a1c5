package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/feather/internal/domain/entities"
)

// Publisher is a mock implementation of ports.Publisher.
type Publisher struct {
	ContentErr error
	QuizErr    error

	mu       sync.Mutex
	Contents []*entities.ContentUnit
	Quizzes  []*entities.QuizRound
}

// PublishContent records the unit.
func (m *Publisher) PublishContent(ctx context.Context, unit *entities.ContentUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ContentErr != nil {
		return m.ContentErr
	}
	m.Contents = append(m.Contents, unit)
	return nil
}

// PublishQuiz records the quiz.
func (m *Publisher) PublishQuiz(ctx context.Context, quiz *entities.QuizRound) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QuizErr != nil {
		return m.QuizErr
	}
	m.Quizzes = append(m.Quizzes, quiz)
	return nil
}

// Metrics is a mock implementation of ports.Metrics that counts events by label.
type Metrics struct {
	mu     sync.Mutex
	Counts map[string]int
}

func (m *Metrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Counts == nil {
		m.Counts = make(map[string]int)
	}
	m.Counts[key]++
}

// Count returns the count recorded for a key such as "tier:curated".
func (m *Metrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counts[key]
}

// CandidateSelected counts a tier.
func (m *Metrics) CandidateSelected(tier string) { m.inc("tier:" + tier) }

// MediaResolved counts a media source.
func (m *Metrics) MediaResolved(source string) { m.inc("media:" + source) }

// FactsProduced counts a fact source.
func (m *Metrics) FactsProduced(source string) { m.inc("facts:" + source) }

// Fallback counts a component fallback.
func (m *Metrics) Fallback(component string) { m.inc("fallback:" + component) }

// Published counts a publication kind.
func (m *Metrics) Published(kind string) { m.inc("published:" + kind) }
