package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// KeywordSets configures KeywordClassifier. All terms are lowercase.
type KeywordSets struct {
	// Blacklist substrings reject a name outright. Keep these unambiguous;
	// ordinary words belong in PlaceWords.
	Blacklist []string
	// PlaceWords reject a name only as its final word ("Mersey River") or
	// inside a trailing qualifier ("Ness (lake)"), so "River Warbler" passes.
	PlaceWords []string
	// GroupSuffixes mark taxonomic-group words such as "Paridae".
	GroupSuffixes []string
	// Indicators are domain vocabulary expected on a species page.
	Indicators []string
	// Taxonomic is classification vocabulary typical of group pages.
	Taxonomic []string
	// GroupFraming phrases open pages describing a group, not a species.
	GroupFraming []string
}

// DefaultKeywordSets returns keyword sets for bird species pages.
func DefaultKeywordSets() KeywordSets {
	return KeywordSets{
		Blacklist: []string{
			"list of", "lists of", "(disambiguation)", "category:", "template:",
			"(album)", "(song)", "(film)", "(band)", "football club",
		},
		PlaceWords: []string{
			"district", "province", "county", "region", "village", "river", "lake",
			"mountain", "mountains", "island", "islands", "airport", "station",
			"family", "order", "genus", "subfamily",
		},
		GroupSuffixes: []string{"idae", "iformes", "inae"},
		Indicators: []string{
			"bird", "birds", "plumage", "feather", "feathers", "wing", "wings",
			"wingspan", "beak", "bill", "nest", "nests", "nesting", "eggs", "clutch",
			"song", "call", "migratory", "migrates", "breeds", "breeding", "passerine",
			"songbird", "waterfowl", "wader", "raptor", "forages", "insects",
		},
		Taxonomic: []string{
			"genus", "genera", "family", "families", "order", "subfamily",
			"taxon", "taxa", "clade", "subgenus", "superfamily",
		},
		GroupFraming: []string{
			"is a genus", "is a family", "is an order", "is a subfamily",
			"are a family", "are a genus", "is a group of", "are a group of",
			"is a common name for", "may refer to",
		},
	}
}

// KeywordClassifier classifies subjects by keyword heuristics.
type KeywordClassifier struct {
	sets KeywordSets
}

// NewKeywordClassifier creates a classifier over the given keyword sets.
func NewKeywordClassifier(sets KeywordSets) *KeywordClassifier {
	return &KeywordClassifier{sets: sets}
}

// RejectsName reports whether the name matches a blacklist term, ends in a
// place or rank word, or looks like a taxonomic group ("Paridae",
// "Passeriformes").
func (c *KeywordClassifier) RejectsName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return true
	}
	for _, term := range c.sets.Blacklist {
		if strings.Contains(lower, term) {
			return true
		}
	}
	if c.endsInPlaceWord(lower) {
		return true
	}
	for _, word := range strings.Fields(lower) {
		for _, suffix := range c.sets.GroupSuffixes {
			if len(word) > len(suffix)+2 && strings.HasSuffix(word, suffix) {
				return true
			}
		}
	}
	return false
}

func (c *KeywordClassifier) endsInPlaceWord(lower string) bool {
	head, qualifier := lower, ""
	if i := strings.LastIndex(lower, "("); i >= 0 && strings.HasSuffix(lower, ")") {
		head, qualifier = lower[:i], lower[i+1:len(lower)-1]
	}
	words := strings.Fields(head)
	for _, term := range c.sets.PlaceWords {
		if len(words) > 0 && words[len(words)-1] == term {
			return true
		}
		if qualifier != "" && containsWord(qualifier, term) {
			return true
		}
	}
	return false
}

// IsSpecies reports whether the reference text reads like a species page:
// at least one domain indicator, no group framing, and taxonomic vocabulary
// not outweighing the indicators.
func (c *KeywordClassifier) IsSpecies(title, text string) bool {
	if c.RejectsName(title) {
		return false
	}

	lower := strings.ToLower(text)
	for _, phrase := range c.sets.GroupFraming {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	indicators := countTerms(lower, c.sets.Indicators)
	if indicators == 0 {
		return false
	}
	taxonomic := countTerms(lower, c.sets.Taxonomic)
	return taxonomic <= indicators
}

// countTerms counts distinct terms present as whole words.
func countTerms(lower string, terms []string) int {
	n := 0
	for _, t := range terms {
		if indexWord(lower, t) >= 0 {
			n++
		}
	}
	return n
}

// SubjectClassifier validates candidate names: curated entries pass, a fast
// name check rejects obvious non-subjects, and everything else needs a
// reference page the Classifier accepts. Missing data means invalid.
type SubjectClassifier struct {
	reference  ports.ReferenceSource
	classifier ports.Classifier
	curated    *CuratedData
	logger     *zap.Logger
}

// NewSubjectClassifier creates a SubjectClassifier.
func NewSubjectClassifier(reference ports.ReferenceSource, classifier ports.Classifier, curated *CuratedData, logger *zap.Logger) *SubjectClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectClassifier{
		reference:  reference,
		classifier: classifier,
		curated:    curated,
		logger:     logger.Named("classifier"),
	}
}

// RejectsName applies only the offline name check.
func (s *SubjectClassifier) RejectsName(name string) bool {
	return s.classifier.RejectsName(name)
}

// IsValidSubject reports whether name is a concrete species.
func (s *SubjectClassifier) IsValidSubject(ctx context.Context, name string) bool {
	if s.curated != nil && s.curated.IsCurated(name) {
		return true
	}
	if s.classifier.RejectsName(name) {
		s.logger.Debug("name rejected", zap.String("subject", name))
		return false
	}
	if s.reference == nil {
		return false
	}

	page, err := s.reference.Lookup(ctx, name)
	if err != nil {
		s.logger.Warn("reference lookup failed", zap.String("subject", name), zap.Error(err))
		return false
	}
	if page == nil || page.Disambiguation || strings.TrimSpace(page.Extract) == "" {
		s.logger.Debug("no reference data", zap.String("subject", name))
		return false
	}

	title := page.Title
	if title == "" {
		title = name
	}
	ok := s.classifier.IsSpecies(title, page.Extract)
	if !ok {
		s.logger.Debug("reference page is not a species", zap.String("subject", name), zap.String("title", title))
	}
	return ok
}

// Validate is IsValidSubject returning entities.ErrValidationRejected on failure.
func (s *SubjectClassifier) Validate(ctx context.Context, name string) error {
	if !s.IsValidSubject(ctx, name) {
		return entities.ErrValidationRejected
	}
	return nil
}
