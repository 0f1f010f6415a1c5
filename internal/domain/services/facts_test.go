package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/mocks"
	"github.com/ersonp/feather/internal/domain/ports"
)

var wrenFacts = []string{
	"The Eurasian wren sings a song that is astonishingly loud for its size.",
	"Males build several domed nests and the female chooses one to line.",
	"In cold winters many wrens roost together in a single cavity for warmth.",
}

func bullets(facts ...string) string {
	var b strings.Builder
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}

func newTestFactGenerator(gen ports.TextGenerator, history ports.HistoryStore, opts ...FactOption) (*FactGenerator, *recordingSleep) {
	rs := &recordingSleep{}
	opts = append([]FactOption{WithFactSleep(rs.sleep)}, opts...)
	return NewFactGenerator(gen, history, DefaultCuratedData(), DefaultFactConfig(), opts...), rs
}

func TestFactGenerator_StoredFactsWin(t *testing.T) {
	history := mocks.NewHistoryStore(mocks.Record("Eurasian Wren", time.Now(), append(wrenFacts, "A fourth stored fact about the Eurasian wren.")...))
	gen := &mocks.TextGenerator{}
	g, _ := newTestFactGenerator(gen, history)

	set, err := g.Generate(context.Background(), entities.NewSubject("eurasian wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceStored, set.Source)
	assert.Equal(t, wrenFacts, set.Facts)
	assert.Equal(t, 0, gen.CallCount())
}

func TestFactGenerator_Generated(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{"Here are the facts:\n" + bullets(wrenFacts...)}}
	metrics := &mocks.Metrics{}
	g, rs := newTestFactGenerator(gen, mocks.NewHistoryStore(), WithFactMetrics(metrics))

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceGenerated, set.Source)
	assert.Equal(t, wrenFacts, set.Facts)
	assert.Zero(t, set.Padded)
	assert.Empty(t, rs.waits)
	assert.Equal(t, 1, metrics.Count("facts:generated"))
	require.Len(t, gen.Params, 1)
	assert.InDelta(t, 0.6, gen.Params[0].Temperature, 0.001)
}

func TestFactGenerator_ContextTextGroundsPrompt(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts...)}}
	g, _ := newTestFactGenerator(gen, nil)

	_, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "The Eurasian wren is a tiny brown bird.")

	require.NoError(t, err)
	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], `"Eurasian Wren"`)
	assert.Contains(t, gen.Prompts[0], "The Eurasian wren is a tiny brown bird.")
}

func TestFactGenerator_GenericFactsRejectedAndPadded(t *testing.T) {
	resp := bullets(
		wrenFacts[0],
		"This bird has unique adaptations to its environment and habitat.",
		"Short fact.",
		wrenFacts[1],
	)
	gen := &mocks.TextGenerator{Responses: []string{resp}}
	g, _ := newTestFactGenerator(gen, nil)

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceGenerated, set.Source)
	require.Len(t, set.Facts, 3)
	assert.Equal(t, wrenFacts[:2], set.Facts[:2])
	assert.Equal(t, DefaultCuratedData().GenericFacts[0], set.Facts[2])
	assert.Equal(t, 1, set.Padded)
}

const wrenContext = "The Eurasian wren is a very small insectivorous bird found across Europe. " +
	"It is mostly brown with a short cocked tail."

func TestFactGenerator_RestatementsOfContextRejected(t *testing.T) {
	resp := bullets(
		"The Eurasian wren is a very small insectivorous bird found across Europe.",
		"the eurasian wren is a VERY small insectivorous bird, found across Europe",
		wrenFacts[0],
		wrenFacts[1],
	)
	gen := &mocks.TextGenerator{Responses: []string{resp}}
	g, _ := newTestFactGenerator(gen, nil)

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), wrenContext)

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceGenerated, set.Source)
	require.Len(t, set.Facts, 3)
	assert.Equal(t, wrenFacts[:2], set.Facts[:2])
	for _, f := range set.Facts {
		assert.False(t, restates(f, wrenContext, entities.MinFactLen), f)
	}
}

func TestFactGenerator_OnlyRestatementsRetried(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{
		bullets("The Eurasian wren is a very small insectivorous bird found across Europe.", "It is mostly brown with a short cocked tail."),
		bullets(wrenFacts...),
	}}
	g, _ := newTestFactGenerator(gen, nil)

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), wrenContext)

	require.NoError(t, err)
	assert.Equal(t, 2, gen.CallCount())
	assert.Equal(t, wrenFacts, set.Facts)
}

func TestFactGenerator_PaddingSkipsRestatements(t *testing.T) {
	generic := DefaultCuratedData().GenericFacts
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts[:2]...)}}
	g, _ := newTestFactGenerator(gen, nil)

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), wrenContext+" "+generic[0])

	require.NoError(t, err)
	require.Len(t, set.Facts, 3)
	assert.Equal(t, generic[1], set.Facts[2])
}

func TestRestates(t *testing.T) {
	tests := []struct {
		name      string
		fact      string
		reference string
		want      bool
	}{
		{"sentence of reference", "It is mostly brown with a short cocked tail.", wrenContext, true},
		{"case and punctuation ignored", "IT IS MOSTLY BROWN, with a short cocked tail", wrenContext, true},
		{"fact wraps whole reference", "Experts agree: the wren is a tiny brown bird of gardens. Truly.", "The wren is a tiny brown bird of gardens.", true},
		{"new information", wrenFacts[0], wrenContext, false},
		{"short reference not matched in reverse", "Wrens are birds that sing loudly in spring.", "Birds.", false},
		{"empty reference", wrenFacts[0], "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, restates(tt.fact, tt.reference, entities.MinFactLen))
		})
	}
}

func TestFactGenerator_RetriesThenFallsBack(t *testing.T) {
	gen := &mocks.TextGenerator{Err: errors.New("service unavailable")}
	metrics := &mocks.Metrics{}
	g, rs := newTestFactGenerator(gen, nil, WithFactMetrics(metrics))

	set, err := g.Generate(context.Background(), entities.NewSubject("Great Spotted Woodpecker"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceFallback, set.Source)
	assert.True(t, set.IsFallback())
	assert.Equal(t, DefaultCuratedData().KeywordFacts[0].Facts, set.Facts)
	assert.Equal(t, 3, gen.CallCount())
	assert.Len(t, rs.waits, 2)
	assert.Equal(t, 1, metrics.Count("fallback:facts"))
}

func TestFactGenerator_TooFewFactsRetried(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{
		bullets(wrenFacts[0]),
		"I don't know anything about this bird.",
		bullets(wrenFacts...),
	}}
	g, rs := newTestFactGenerator(gen, nil)

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceGenerated, set.Source)
	assert.Equal(t, 3, gen.CallCount())
	assert.Len(t, rs.waits, 2)
}

func TestFactGenerator_DuplicatesOfOtherSubjectsDropped(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts...)}}
	index := &mocks.FactIndex{Matches: []ports.FactMatch{{Subject: "Great Tit", Fact: wrenFacts[0], Score: 0.97}}}
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2}}
	g, _ := newTestFactGenerator(gen, nil, WithFactIndex(embedder, index))

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceFallback, set.Source)
	assert.Equal(t, 9, index.Searches)
}

func TestFactGenerator_SameSubjectMatchesKept(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts...)}}
	index := &mocks.FactIndex{Matches: []ports.FactMatch{{Subject: "eurasian wren", Fact: wrenFacts[0], Score: 0.99}}}
	g, _ := newTestFactGenerator(gen, nil, WithFactIndex(&mocks.Embedder{EmbeddingResult: []float32{1}}, index))

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, entities.FactSourceGenerated, set.Source)
	assert.Equal(t, wrenFacts, set.Facts)
}

func TestFactGenerator_IndexFailureDisablesGate(t *testing.T) {
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts...)}}
	index := &mocks.FactIndex{SimilarErr: errors.New("qdrant down")}
	g, _ := newTestFactGenerator(gen, nil, WithFactIndex(&mocks.Embedder{EmbeddingResult: []float32{1}}, index))

	set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

	require.NoError(t, err)
	assert.Equal(t, wrenFacts, set.Facts)
}

func TestFactGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &mocks.TextGenerator{Responses: []string{bullets(wrenFacts...)}}
	g, _ := newTestFactGenerator(gen, nil)

	set, err := g.Generate(ctx, entities.NewSubject("Mallard"), "")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, entities.FactSourceFallback, set.Source)
	assert.Len(t, set.Facts, 3)
}

// Whatever the generator returns, the result holds 2-3 non-generic facts
// within bounds.
func TestFactGenerator_OutputAlwaysPassesGate(t *testing.T) {
	responses := []string{
		"",
		"No facts available.",
		bullets("Too short."),
		bullets("This bird plays an important role in the ecosystem of the forest."),
		bullets(strings.Repeat("A very long sentence about wrens ", 10)),
		bullets(wrenFacts[0], wrenFacts[0], wrenFacts[0]),
		bullets(wrenFacts...),
		"1. " + wrenFacts[0] + "\n2) " + wrenFacts[1] + "\n* " + wrenFacts[2],
	}
	gate := DefaultFactGate()

	for _, resp := range responses {
		gen := &mocks.TextGenerator{Responses: []string{resp}}
		g, _ := newTestFactGenerator(gen, nil)

		set, err := g.Generate(context.Background(), entities.NewSubject("Eurasian Wren"), "")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(set.Facts), entities.MinFacts, resp)
		assert.LessOrEqual(t, len(set.Facts), entities.MaxFacts, resp)
		for _, f := range set.Facts {
			assert.True(t, gate.Accepts(f), "fact %q from response %q", f, resp)
		}
	}
}

func TestFactGate(t *testing.T) {
	gate := DefaultFactGate()

	assert.True(t, gate.Accepts(wrenFacts[0]))
	assert.False(t, gate.Accepts("Too short."))
	assert.False(t, gate.Accepts(strings.Repeat("x", entities.MaxFactLen+1)))
	assert.False(t, gate.Accepts("The wren has unique adaptations that help it survive."))
	assert.True(t, gate.IsGeneric("As an AI, I cannot answer that question."))

	filtered := gate.Filter([]string{wrenFacts[0], strings.ToUpper(wrenFacts[0]), "Short.", wrenFacts[1]})
	assert.Equal(t, []string{wrenFacts[0], wrenFacts[1]}, filtered)
}

func TestParseBulletList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dashes", "- one\n- two", []string{"one", "two"}},
		{"mixed markers", "* one\n• two\n– three\n— four", []string{"one", "two", "three", "four"}},
		{"numbered", "1. one\n2) two\n10. ten", []string{"one", "two", "ten"}},
		{"preamble ignored", "Here are three facts:\n- one\n\nThanks!", []string{"one"}},
		{"quoted and bold", `- "one"` + "\n- **two**", []string{"one", "two"}},
		{"decimal is not a marker", "3.5 million pairs breed here", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBulletList(tt.text))
		})
	}
}
