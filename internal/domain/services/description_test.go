package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/mocks"
)

func TestDescriptionComposer_Compose(t *testing.T) {
	wren := entities.NewSubject("Eurasian Wren")
	generated := "The Eurasian wren is a tiny passerine of the family Troglodytidae. It has a cocked tail and a loud song."
	long := strings.Repeat("The wren is small and brown. ", 12)

	tests := []struct {
		name         string
		gen          *mocks.TextGenerator
		facts        []string
		want         string
		wantFallback bool
	}{
		{
			name:  "generated",
			gen:   &mocks.TextGenerator{Responses: []string{`"` + generated + `"`}},
			facts: wrenFacts,
			want:  generated,
		},
		{
			name:  "over-long text cut at a sentence",
			gen:   &mocks.TextGenerator{Responses: []string{long}},
			facts: wrenFacts,
			want:  strings.TrimSpace(strings.Repeat("The wren is small and brown. ", 8)),
		},
		{
			name:  "too short falls back to first fact",
			gen:   &mocks.TextGenerator{Responses: []string{"A wren."}},
			facts: wrenFacts,
			want:  wrenFacts[0],
		},
		{
			name:  "generator error falls back to first fact",
			gen:   &mocks.TextGenerator{Err: errors.New("quota exceeded")},
			facts: wrenFacts,
			want:  wrenFacts[0],
		},
		{
			name:         "no facts falls back to template",
			gen:          &mocks.TextGenerator{Err: errors.New("quota exceeded")},
			want:         "Eurasian Wren is a bird species featured in our collection.",
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDescriptionComposer(tt.gen, nil, nil)

			got := d.Compose(context.Background(), wren, tt.facts)

			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.wantFallback, got.Fallback)
			assert.LessOrEqual(t, runeLen(got.Text), MaxDescriptionLen)
			assert.NotEmpty(t, got.Text)
		})
	}
}

func TestDescriptionComposer_NilGeneratorRecordsFallback(t *testing.T) {
	metrics := &mocks.Metrics{}
	d := NewDescriptionComposer(nil, metrics, nil)

	got := d.Compose(context.Background(), entities.NewSubject("Goldcrest"), []string{strings.Repeat("x", MaxDescriptionLen+1)})

	assert.True(t, got.Fallback)
	assert.Equal(t, 1, metrics.Count("fallback:description"))
}

func TestCutAtSentence(t *testing.T) {
	assert.Equal(t, "short", cutAtSentence("short", 10))
	assert.Equal(t, "One. Two.", cutAtSentence("One. Two. Three.", 12))
	assert.Equal(t, "", cutAtSentence("no sentence end here at all", 10))

	text := strings.Repeat("Ж", 20) + ". " + strings.Repeat("Ж", 20)
	got := cutAtSentence(text, 30)
	require.NotEmpty(t, got)
	assert.Equal(t, 21, runeLen(got))
}
