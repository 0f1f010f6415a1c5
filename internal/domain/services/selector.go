package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

const candidatePrompt = `Name ONE real bird species that lives in %s.

Rules:
1. The bird MUST occur in %s (no exotic species)
2. Give the common English name of a concrete SPECIES, not a family or genus
3. The bird must NOT be in this list: %s
4. Avoid tropical and oceanic birds

Examples of good answers: Common Kestrel, Spotted Flycatcher, Common Greenshank, Tufted Duck, Goldcrest

Return ONLY the bird name, without quotes or explanations.`

// PhotoChecker reports whether a subject has a real photo available.
type PhotoChecker interface {
	HasPhoto(ctx context.Context, name string) bool
}

// SelectorConfig tunes candidate selection.
type SelectorConfig struct {
	GenerativeAttempts int
	GenerativeDelay    time.Duration
	// ExclusionWindow is how many recent names the generative prompt excludes.
	ExclusionWindow int
	// CatalogLimit caps how many catalog names are inspected per run.
	CatalogLimit int
	// Region constrains generated names, e.g. "Europe".
	Region string
}

// DefaultSelectorConfig returns 3 generative attempts 1s apart, a 30-name
// exclusion window and 20 catalog names per run.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		GenerativeAttempts: 3,
		GenerativeDelay:    time.Second,
		ExclusionWindow:    30,
		CatalogLimit:       20,
		Region:             "Europe",
	}
}

// Selection is the chosen subject and how it was found.
type Selection struct {
	Subject  entities.Subject
	Tier     entities.CandidateTier
	Repeated bool
	// SuggestionID is set when the subject came from an approved suggestion.
	SuggestionID string
}

// CandidateSelector picks a novel subject, trying the priority, curated,
// catalog and generative tiers in order before falling back to the safe list.
type CandidateSelector struct {
	curated     *CuratedData
	classifier  *SubjectClassifier
	cfg         SelectorConfig
	catalog     ports.Catalog
	generator   ports.TextGenerator
	photos      PhotoChecker
	suggestions ports.SuggestionStore
	metrics     ports.Metrics
	rng         *rand.Rand
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// SelectorOption customises the CandidateSelector.
type SelectorOption func(*CandidateSelector)

// WithCatalog enables the catalog tier.
func WithCatalog(catalog ports.Catalog) SelectorOption {
	return func(s *CandidateSelector) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithCandidateGenerator enables the generative tier. photos checks that a
// generated name has a real photo.
func WithCandidateGenerator(generator ports.TextGenerator, photos PhotoChecker) SelectorOption {
	return func(s *CandidateSelector) {
		if generator != nil && photos != nil {
			s.generator = generator
			s.photos = photos
		}
	}
}

// WithSuggestions enables the priority tier of approved suggestions.
func WithSuggestions(store ports.SuggestionStore) SelectorOption {
	return func(s *CandidateSelector) {
		if store != nil {
			s.suggestions = store
		}
	}
}

// WithSelectorMetrics records the chosen tier.
func WithSelectorMetrics(m ports.Metrics) SelectorOption {
	return func(s *CandidateSelector) {
		s.metrics = m
	}
}

// WithSelectorRand sets the shuffle source (primarily for tests).
func WithSelectorRand(rng *rand.Rand) SelectorOption {
	return func(s *CandidateSelector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSelectorSleep overrides the inter-attempt wait (primarily for tests).
func WithSelectorSleep(sleep func(ctx context.Context, d time.Duration) error) SelectorOption {
	return func(s *CandidateSelector) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(logger *zap.Logger) SelectorOption {
	return func(s *CandidateSelector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCandidateSelector creates a selector over the curated tables.
func NewCandidateSelector(curated *CuratedData, classifier *SubjectClassifier, cfg SelectorConfig, opts ...SelectorOption) *CandidateSelector {
	s := &CandidateSelector{
		curated:    curated,
		classifier: classifier,
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("selector")
	return s
}

// Select returns a subject whose normalized name is not in existing, unless
// every tier is exhausted, in which case a safe subject is repeated and
// Selection.Repeated is set. It fails only when ctx is done.
func (s *CandidateSelector) Select(ctx context.Context, existing *entities.NameSet) (Selection, error) {
	if existing == nil {
		existing = entities.NewNameSet()
	}

	tiers := []struct {
		tier entities.CandidateTier
		run  func(context.Context, *entities.NameSet) (Selection, bool)
	}{
		{entities.TierPriority, s.fromSuggestions},
		{entities.TierCurated, s.fromCurated},
		{entities.TierCatalog, s.fromCatalog},
		{entities.TierGenerative, s.fromGenerator},
	}
	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return Selection{}, err
		}
		sel, ok := t.run(ctx, existing)
		if ok {
			sel.Tier = t.tier
			s.chosen(sel)
			return sel, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}

	sel := s.exhausted(existing)
	s.chosen(sel)
	return sel, nil
}

func (s *CandidateSelector) chosen(sel Selection) {
	if s.metrics != nil {
		s.metrics.CandidateSelected(string(sel.Tier))
	}
	s.logger.Info("candidate selected",
		zap.String("subject", sel.Subject.Name),
		zap.String("tier", string(sel.Tier)),
		zap.Bool("repeated", sel.Repeated))
}

func (s *CandidateSelector) fromSuggestions(ctx context.Context, existing *entities.NameSet) (Selection, bool) {
	if s.suggestions == nil {
		return Selection{}, false
	}
	approved, err := s.suggestions.ListSuggestions(ctx, entities.SuggestionApproved, 0)
	if err != nil {
		s.logger.Warn("listing approved suggestions failed", zap.Error(err))
		return Selection{}, false
	}
	for _, sg := range approved {
		if existing.Has(sg.Subject.Name) {
			continue
		}
		if !s.classifier.IsValidSubject(ctx, sg.Subject.Name) {
			s.logger.Info("approved suggestion failed validation", zap.String("subject", sg.Subject.Name))
			continue
		}
		return Selection{Subject: entities.NewSubject(sg.Subject.Name), SuggestionID: sg.ID}, true
	}
	return Selection{}, false
}

// fromCurated trusts the pre-vetted list without further checks.
func (s *CandidateSelector) fromCurated(ctx context.Context, existing *entities.NameSet) (Selection, bool) {
	names := append([]string(nil), s.curated.Subjects...)
	s.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	for _, name := range names {
		if !existing.Has(name) {
			return Selection{Subject: entities.NewSubject(name)}, true
		}
	}
	return Selection{}, false
}

func (s *CandidateSelector) fromCatalog(ctx context.Context, existing *entities.NameSet) (Selection, bool) {
	if s.catalog == nil {
		return Selection{}, false
	}
	names, err := s.catalog.Candidates(ctx, s.cfg.CatalogLimit)
	if err != nil {
		s.logger.Warn("catalog lookup failed", zap.Error(err))
		return Selection{}, false
	}
	names = append([]string(nil), names...)
	s.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	for _, raw := range names {
		if ctx.Err() != nil {
			return Selection{}, false
		}
		if s.classifier.RejectsName(raw) {
			continue
		}
		name := stripQualifier(raw)
		if name == "" || existing.Has(name) || s.curated.IsGroupName(name) {
			continue
		}
		if !s.classifier.IsValidSubject(ctx, name) {
			continue
		}
		return Selection{Subject: entities.NewSubject(name)}, true
	}
	return Selection{}, false
}

func (s *CandidateSelector) fromGenerator(ctx context.Context, existing *entities.NameSet) (Selection, bool) {
	if s.generator == nil {
		return Selection{}, false
	}

	exclusions := existing.Recent(s.cfg.ExclusionWindow)
	excluded := "none"
	if len(exclusions) > 0 {
		excluded = strings.Join(exclusions, ", ")
	}
	prompt := fmt.Sprintf(candidatePrompt, s.cfg.Region, s.cfg.Region, excluded)

	name, attempts, err := Retry(ctx, RetryPolicy{Attempts: s.cfg.GenerativeAttempts, Delay: s.cfg.GenerativeDelay, Sleep: s.sleep},
		func(ctx context.Context, attempt int) (string, error) {
			resp, err := s.generator.Generate(ctx, prompt, ports.GenerationParams{Temperature: 0.7, MaxTokens: 50, TopP: 0.8})
			if err != nil {
				return "", fmt.Errorf("generating candidate: %w", err)
			}
			return s.checkGenerated(ctx, cleanCandidateName(resp), existing)
		}, nil)
	if err != nil {
		s.logger.Warn("generative tier exhausted", zap.Error(err))
		return Selection{}, false
	}
	s.logger.Debug("generated candidate accepted", zap.String("subject", name), zap.Int("attempts", attempts))
	return Selection{Subject: entities.NewSubject(name)}, true
}

// checkGenerated validates a generated name, substituting a similar subject
// with a photo when the name itself has none.
func (s *CandidateSelector) checkGenerated(ctx context.Context, name string, existing *entities.NameSet) (string, error) {
	switch {
	case name == "":
		return "", fmt.Errorf("empty candidate: %w", entities.ErrInvalidResponse)
	case s.curated.IsGroupName(name):
		return "", fmt.Errorf("%q is a group name: %w", name, entities.ErrValidationRejected)
	case s.curated.IsExotic(name):
		return "", fmt.Errorf("%q is outside the region: %w", name, entities.ErrValidationRejected)
	case existing.Has(name):
		return "", fmt.Errorf("%q already published: %w", name, entities.ErrValidationRejected)
	case !s.classifier.IsValidSubject(ctx, name):
		return "", fmt.Errorf("%q failed classification: %w", name, entities.ErrValidationRejected)
	}

	if s.photos.HasPhoto(ctx, name) {
		return name, nil
	}
	for _, similar := range s.curated.SimilarSubjects(name) {
		if existing.Has(similar) || s.classifier.RejectsName(similar) {
			continue
		}
		if s.photos.HasPhoto(ctx, similar) {
			s.logger.Info("using similar subject with photo", zap.String("generated", name), zap.String("subject", similar))
			return similar, nil
		}
	}
	return "", fmt.Errorf("%q has no real photo: %w", name, entities.ErrValidationRejected)
}

// exhausted returns the first safe subject not yet published, or repeats
// the first safe subject.
func (s *CandidateSelector) exhausted(existing *entities.NameSet) Selection {
	if s.metrics != nil {
		s.metrics.Fallback("selector")
	}
	for _, name := range s.curated.SafeSubjects {
		if !existing.Has(name) {
			return Selection{Subject: entities.NewSubject(name), Tier: entities.TierExhausted}
		}
	}
	s.logger.Warn("all tiers exhausted, repeating a safe subject", zap.String("subject", s.curated.SafeSubjects[0]))
	return Selection{Subject: entities.NewSubject(s.curated.SafeSubjects[0]), Tier: entities.TierExhausted, Repeated: true}
}

// cleanCandidateName strips quotes, numbering and trailing dots from a
// generated name and keeps only its first line.
func cleanCandidateName(resp string) string {
	line := strings.TrimSpace(resp)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(strings.TrimSpace(line), "\"'`*")
	line = strings.TrimLeft(line, "0123456789.-) ")
	line = strings.TrimRight(line, ". ")
	return strings.Join(strings.Fields(line), " ")
}

// stripQualifier drops a trailing parenthetical such as " (bird)".
func stripQualifier(title string) string {
	title = strings.TrimSpace(title)
	if i := strings.LastIndex(title, " ("); i > 0 && strings.HasSuffix(title, ")") {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}
