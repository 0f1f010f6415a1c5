package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// MinQuestionLen is the shortest generated question accepted, in runes.
const MinQuestionLen = 25

const quizPrompt = `Write an interesting bird quiz question based on this fact:

"%s"

Requirements:
1. The question asks which BIRD the fact describes
2. Do NOT mention the name "%s"
3. Make it clear and interesting, with a non-obvious answer
4. One or two sentences

Return ONLY the question.`

const (
	guessQuestion    = "Which of these birds was featured most recently?"
	fallbackQuestion = "Which of these birds was featured on our channel?"
	maskReplacement  = "this bird"
)

// QuizComposer builds multiple-choice rounds from publication history.
type QuizComposer struct {
	generator ports.TextGenerator
	curated   *CuratedData
	gate      FactGate
	rng       *rand.Rand
	logger    *zap.Logger
}

// NewQuizComposer creates a QuizComposer. generator may be nil, in which
// case every question is templated. rng may be nil.
func NewQuizComposer(generator ports.TextGenerator, curated *CuratedData, gate FactGate, rng *rand.Rand, logger *zap.Logger) *QuizComposer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizComposer{
		generator: generator,
		curated:   curated,
		gate:      gate,
		rng:       rng,
		logger:    logger.Named("quiz"),
	}
}

type quizCandidate struct {
	record entities.HistoryRecord
	facts  []string
}

// Compose returns a fact-based round, or nil when fewer than four distinct
// records carry at least two facts passing the gate.
func (q *QuizComposer) Compose(ctx context.Context, history []entities.HistoryRecord) *entities.QuizRound {
	candidates := q.qualifying(history)
	if len(candidates) < entities.QuizOptionCount {
		q.logger.Info("not enough qualifying history for a quiz", zap.Int("qualifying", len(candidates)))
		return nil
	}

	q.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	answer := candidates[0]
	fact := pickFact(answer.record.Subject.Name, answer.facts)

	question := q.question(ctx, answer.record.Subject, fact)

	names := make([]string, 0, entities.QuizOptionCount)
	names = append(names, answer.record.Subject.Name)
	for _, c := range candidates[1:] {
		if len(names) == entities.QuizOptionCount {
			break
		}
		names = append(names, c.record.Subject.Name)
	}

	round := q.assemble(entities.QuizKindFact, question, answer.record.Subject, names)
	round.Explanation = fmt.Sprintf("%s: %s", answer.record.Subject.Name, fact)
	if err := round.Validate(); err != nil {
		q.logger.Error("quiz failed validation", zap.Error(err))
		return nil
	}
	return round
}

// ComposeGuess returns a round asking which of the four most recent
// distinct subjects was featured last, or nil with fewer than four.
func (q *QuizComposer) ComposeGuess(ctx context.Context, history []entities.HistoryRecord) *entities.QuizRound {
	recent := distinctRecords(history)
	if len(recent) < entities.QuizOptionCount {
		return nil
	}
	recent = recent[:entities.QuizOptionCount]

	names := make([]string, len(recent))
	for i, r := range recent {
		names[i] = r.Subject.Name
	}
	round := q.assemble(entities.QuizKindGuess, guessQuestion, recent[0].Subject, names)
	round.Explanation = fmt.Sprintf("%s was featured on %s.", recent[0].Subject.Name, recent[0].PostedAt.Format("2 January 2006"))
	if err := round.Validate(); err != nil {
		q.logger.Error("guess quiz failed validation", zap.Error(err))
		return nil
	}
	return round
}

// assemble shuffles names (names[0] is the answer) and locates the answer.
func (q *QuizComposer) assemble(kind entities.QuizKind, question string, answer entities.Subject, names []string) *entities.QuizRound {
	options := append([]string(nil), names...)
	q.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correct := -1
	for i, opt := range options {
		if entities.NormalizeName(opt) == answer.NormalizedName {
			correct = i
			break
		}
	}
	return &entities.QuizRound{
		Kind:           kind,
		Question:       question,
		Options:        options,
		CorrectIndex:   correct,
		CorrectSubject: answer,
	}
}

// question asks the generator to phrase the fact as a question and falls
// back to a template when the result is short or names the subject.
func (q *QuizComposer) question(ctx context.Context, subject entities.Subject, fact string) string {
	if q.generator != nil {
		resp, err := q.generator.Generate(ctx, fmt.Sprintf(quizPrompt, fact, subject.Name),
			ports.GenerationParams{Temperature: 0.7, MaxTokens: 100, TopP: 0.8})
		if err == nil {
			text := cleanGenerated(resp)
			if !leaksName(text, subject.Name) && runeLen(text) >= MinQuestionLen {
				return text
			}
			q.logger.Debug("generated question rejected", zap.String("question", text))
		} else {
			q.logger.Warn("question generation failed", zap.Error(err))
		}
	}
	return q.templateQuestion(subject, fact)
}

func (q *QuizComposer) templateQuestion(subject entities.Subject, fact string) string {
	masked := strings.TrimRight(maskWord(fact, subject.Name, maskReplacement), ".!? ")
	phrase := "bird"
	if q.curated != nil {
		phrase = q.curated.TypePhrase(subject.Name)
	}
	question := fmt.Sprintf("Which %s matches this description: \"%s\"?", phrase, masked)
	if !leaksName(question, subject.Name) {
		return question
	}
	question = fmt.Sprintf("Which %s is this? Hint: it was featured on our channel.", phrase)
	if !leaksName(question, subject.Name) {
		return question
	}
	return fallbackQuestion
}

// qualifying returns distinct records with at least MinFacts gated facts,
// keeping the first occurrence of each subject.
func (q *QuizComposer) qualifying(history []entities.HistoryRecord) []quizCandidate {
	var out []quizCandidate
	for _, r := range distinctRecords(history) {
		facts := q.gate.Filter(r.Facts)
		if len(facts) >= entities.MinFacts {
			out = append(out, quizCandidate{record: r, facts: facts})
		}
	}
	return out
}

func distinctRecords(history []entities.HistoryRecord) []entities.HistoryRecord {
	seen := make(map[string]struct{}, len(history))
	out := make([]entities.HistoryRecord, 0, len(history))
	for _, r := range history {
		key := r.Subject.NormalizedName
		if key == "" {
			key = entities.NormalizeName(r.Subject.Name)
			r.Subject = entities.NewSubject(r.Subject.Name)
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// pickFact prefers a fact that does not mention the subject by name.
func pickFact(name string, facts []string) string {
	for _, f := range facts {
		if !containsWord(f, name) {
			return f
		}
	}
	return facts[0]
}

// leaksName reports whether text names the subject, either verbatim or as
// a case-insensitive whole word.
func leaksName(text, name string) bool {
	return strings.Contains(text, name) || containsWord(text, name)
}
