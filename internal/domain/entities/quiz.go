package entities

import (
	"errors"
	"fmt"
)

// QuizOptionCount is the number of answer options in a quiz round.
const QuizOptionCount = 4

// QuizKind distinguishes fact-based quizzes from the recency fallback.
type QuizKind string

// Quiz kinds.
const (
	QuizKindFact  QuizKind = "fact"
	QuizKindGuess QuizKind = "guess"
)

// QuizRound is a multiple-choice question about a previously published subject.
type QuizRound struct {
	Kind           QuizKind `json:"kind"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndex   int      `json:"correct_index"`
	CorrectSubject Subject  `json:"correct_subject"`
	Explanation    string   `json:"explanation"`
}

// Validate checks that the round has four distinct options and that the
// option at CorrectIndex is the correct subject's name.
func (q *QuizRound) Validate() error {
	if q.Question == "" {
		return errors.New("quiz question is empty")
	}
	if len(q.Options) != QuizOptionCount {
		return fmt.Errorf("quiz has %d options, want %d", len(q.Options), QuizOptionCount)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range", q.CorrectIndex)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		key := NormalizeName(opt)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate quiz option: %s", opt)
		}
		seen[key] = struct{}{}
	}
	if NormalizeName(q.Options[q.CorrectIndex]) != q.CorrectSubject.NormalizedName {
		return fmt.Errorf("option %d is %q, want %q", q.CorrectIndex, q.Options[q.CorrectIndex], q.CorrectSubject.Name)
	}
	return nil
}
