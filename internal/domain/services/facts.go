package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

const factsPrompt = `Give exactly 3 scientific facts about ONE bird only: "%s".

Requirements:
- Every fact must be about the species "%s" only
- Facts must be real and verifiable
- Each fact is one sentence of 10-25 words
- No introductions, numbering, conclusions or explanations
- Put each fact on its own line starting with "- "`

const factsContextPrompt = `

Reference summary you may draw on:
%s`

// FactGate is the length and genericity gate shared by fact generation
// and quiz composition.
type FactGate struct {
	MinLen int
	MaxLen int
	// GenericPhrases are lowercase template phrases a generator produces
	// when it has no real information.
	GenericPhrases []string
}

// DefaultFactGate returns the gate with the standard bounds and phrases.
func DefaultFactGate() FactGate {
	return FactGate{
		MinLen: entities.MinFactLen,
		MaxLen: entities.MaxFactLen,
		GenericPhrases: []string{
			"has unique adaptations", "unique adaptations", "unique features",
			"unique characteristics", "plays an important role", "important role in the ecosystem",
			"specialized way of feeding", "specialised way of feeding", "various types of landscapes",
			"adapted to local conditions", "is an interesting bird", "is a fascinating bird",
			"i cannot", "i can't", "i don't know", "i do not know", "as an ai", "no information",
			"not enough information",
		},
	}
}

// IsGeneric reports whether the fact matches a template phrase.
func (g FactGate) IsGeneric(fact string) bool {
	lower := strings.ToLower(fact)
	for _, phrase := range g.GenericPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Accepts reports whether the fact is within bounds and not generic.
func (g FactGate) Accepts(fact string) bool {
	n := entities.FactLen(fact)
	return n >= g.MinLen && n <= g.MaxLen && !g.IsGeneric(fact)
}

// Filter returns the distinct facts passing the gate, in order.
func (g FactGate) Filter(facts []string) []string {
	seen := make(map[string]struct{}, len(facts))
	out := make([]string, 0, len(facts))
	for _, f := range facts {
		f = strings.TrimSpace(f)
		if !g.Accepts(f) {
			continue
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// FactConfig tunes fact generation.
type FactConfig struct {
	Attempts int
	Delay    time.Duration
	// DuplicateThreshold is the similarity at or above which a fact counts
	// as a copy of another subject's stored fact.
	DuplicateThreshold float32
}

// DefaultFactConfig returns 3 attempts, 1s apart, with a 0.95 duplicate threshold.
func DefaultFactConfig() FactConfig {
	return FactConfig{
		Attempts:           3,
		Delay:              time.Second,
		DuplicateThreshold: 0.95,
	}
}

// FactGenerator produces 2-3 quality facts per subject, preferring stored
// facts, then generated ones, then the curated table.
type FactGenerator struct {
	generator ports.TextGenerator
	history   ports.HistoryStore
	curated   *CuratedData
	gate      FactGate
	cfg       FactConfig
	embedder  ports.Embedder
	index     ports.FactIndex
	sleep     func(ctx context.Context, d time.Duration) error
	metrics   ports.Metrics
	logger    *zap.Logger
}

// FactOption customises the FactGenerator.
type FactOption func(*FactGenerator)

// WithFactIndex enables the cross-subject duplicate gate.
func WithFactIndex(embedder ports.Embedder, index ports.FactIndex) FactOption {
	return func(g *FactGenerator) {
		if embedder != nil && index != nil {
			g.embedder = embedder
			g.index = index
		}
	}
}

// WithFactGate overrides the quality gate.
func WithFactGate(gate FactGate) FactOption {
	return func(g *FactGenerator) {
		g.gate = gate
	}
}

// WithFactSleep overrides the inter-attempt wait (primarily for tests).
func WithFactSleep(sleep func(ctx context.Context, d time.Duration) error) FactOption {
	return func(g *FactGenerator) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// WithFactMetrics records fact sources.
func WithFactMetrics(m ports.Metrics) FactOption {
	return func(g *FactGenerator) {
		g.metrics = m
	}
}

// WithFactLogger sets the logger.
func WithFactLogger(logger *zap.Logger) FactOption {
	return func(g *FactGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewFactGenerator creates a FactGenerator. generator and history may be nil,
// in which case generation or the stored short-circuit is skipped.
func NewFactGenerator(generator ports.TextGenerator, history ports.HistoryStore, curated *CuratedData, cfg FactConfig, opts ...FactOption) *FactGenerator {
	g := &FactGenerator{
		generator: generator,
		history:   history,
		curated:   curated,
		gate:      DefaultFactGate(),
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("facts")
	return g
}

// Generate returns between 2 and 3 facts for the subject. Stored facts win
// when at least three exist. contextText, when non-empty, is offered to the
// generator as grounding, and facts restating it are rejected.
func (g *FactGenerator) Generate(ctx context.Context, subject entities.Subject, contextText string) (entities.FactSet, error) {
	if stored := g.stored(ctx, subject); len(stored) >= entities.MaxFacts {
		g.record(entities.FactSourceStored)
		return entities.FactSet{Facts: stored[:entities.MaxFacts], Source: entities.FactSourceStored}, nil
	}

	if g.generator != nil {
		facts, attempts, err := Retry(ctx, RetryPolicy{Attempts: g.cfg.Attempts, Delay: g.cfg.Delay, Sleep: g.sleep},
			func(ctx context.Context, attempt int) ([]string, error) {
				return g.attempt(ctx, subject, contextText)
			},
			func(facts []string) bool { return len(facts) >= entities.MinFacts },
		)
		if err == nil {
			padded := g.pad(subject, facts, contextText)
			g.logger.Info("facts generated",
				zap.String("subject", subject.Name),
				zap.Int("attempts", attempts),
				zap.Int("padded", len(padded)-len(facts)))
			g.record(entities.FactSourceGenerated)
			return entities.FactSet{Facts: padded, Source: entities.FactSourceGenerated, Padded: len(padded) - len(facts)}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return g.fallback(subject), ctxErr
		}
		g.logger.Warn("fact generation failed, using curated facts", zap.String("subject", subject.Name), zap.Error(err))
	}

	return g.fallback(subject), nil
}

func (g *FactGenerator) stored(ctx context.Context, subject entities.Subject) []string {
	if g.history == nil {
		return nil
	}
	facts, err := g.history.GetFacts(ctx, subject.NormalizedName)
	if err != nil {
		g.logger.Warn("reading stored facts failed", zap.String("subject", subject.Name), zap.Error(err))
		return nil
	}
	return facts
}

// attempt performs one generation call and returns the qualifying facts.
func (g *FactGenerator) attempt(ctx context.Context, subject entities.Subject, contextText string) ([]string, error) {
	prompt := fmt.Sprintf(factsPrompt, subject.Name, subject.Name)
	if ctxText := strings.TrimSpace(contextText); ctxText != "" {
		prompt += fmt.Sprintf(factsContextPrompt, truncateRunes(ctxText, 1200))
	}

	resp, err := g.generator.Generate(ctx, prompt, ports.GenerationParams{Temperature: 0.6, MaxTokens: 300})
	if err != nil {
		return nil, fmt.Errorf("generating facts: %w", err)
	}

	candidates := ParseBulletList(resp)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no bulleted facts in response: %w", entities.ErrInvalidResponse)
	}

	facts := g.dropRestatements(subject, g.gate.Filter(candidates), contextText)
	facts = g.dropDuplicates(ctx, subject, facts)
	if len(facts) > entities.MaxFacts {
		facts = facts[:entities.MaxFacts]
	}
	return facts, nil
}

// dropRestatements removes facts that repeat the reference text.
func (g *FactGenerator) dropRestatements(subject entities.Subject, facts []string, contextText string) []string {
	if strings.TrimSpace(contextText) == "" {
		return facts
	}
	kept := make([]string, 0, len(facts))
	for _, f := range facts {
		if restates(f, contextText, g.gate.MinLen) {
			g.logger.Debug("fact restates reference text", zap.String("subject", subject.Name), zap.String("fact", f))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// dropDuplicates removes facts nearly identical to another subject's
// indexed facts. Index failures disable the gate for this attempt.
func (g *FactGenerator) dropDuplicates(ctx context.Context, subject entities.Subject, facts []string) []string {
	if g.index == nil || len(facts) == 0 {
		return facts
	}
	vectors, err := g.embedder.EmbedBatch(ctx, facts)
	if err != nil || len(vectors) != len(facts) {
		g.logger.Warn("embedding facts failed", zap.Error(err))
		return facts
	}
	kept := make([]string, 0, len(facts))
	for i, f := range facts {
		matches, err := g.index.Similar(ctx, vectors[i], 1)
		if err != nil {
			g.logger.Warn("fact index search failed", zap.Error(err))
			return facts
		}
		if len(matches) > 0 && matches[0].Score >= g.cfg.DuplicateThreshold &&
			entities.NormalizeName(matches[0].Subject) != subject.NormalizedName {
			g.logger.Debug("fact duplicates another subject",
				zap.String("subject", subject.Name),
				zap.String("other", matches[0].Subject))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// pad tops the facts up to MaxFacts from the curated table, skipping entries
// that restate contextText.
func (g *FactGenerator) pad(subject entities.Subject, facts []string, contextText string) []string {
	out := append([]string(nil), facts...)
	if len(out) >= entities.MaxFacts {
		return out[:entities.MaxFacts]
	}
	pool := append(append([]string(nil), g.curated.FallbackFacts(subject.Name)...), g.curated.GenericFacts...)
	for _, f := range pool {
		if len(out) >= entities.MaxFacts {
			break
		}
		if containsFold(out, f) || restates(f, contextText, g.gate.MinLen) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (g *FactGenerator) fallback(subject entities.Subject) entities.FactSet {
	g.record(entities.FactSourceFallback)
	if g.metrics != nil {
		g.metrics.Fallback("facts")
	}
	facts := append([]string(nil), g.curated.FallbackFacts(subject.Name)...)
	if len(facts) > entities.MaxFacts {
		facts = facts[:entities.MaxFacts]
	}
	return entities.FactSet{Facts: facts, Source: entities.FactSourceFallback}
}

func (g *FactGenerator) record(source entities.FactSource) {
	if g.metrics != nil {
		g.metrics.FactsProduced(string(source))
	}
}

// ParseBulletList returns the text of every line that starts with a bullet
// marker ("-", "*", "•", "–", "—", "1.", "1)"), marker stripped. Lines
// without a marker are ignored.
func ParseBulletList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		item, ok := stripBullet(line)
		if !ok {
			continue
		}
		item = strings.Trim(strings.TrimSpace(item), "\"")
		item = strings.TrimSpace(strings.Trim(item, "*"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func stripBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• ", "– ", "— ", "•", "–", "—"} {
		if strings.HasPrefix(line, marker) {
			return line[len(marker):], true
		}
	}
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		rest := line[digits+1:]
		if rest == "" || unicode.IsSpace(rune(rest[0])) {
			return rest, true
		}
	}
	return "", false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
