package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// Description limits, in runes.
const (
	MaxDescriptionLen = 250
	MinDescriptionLen = 30
)

const descriptionPrompt = `Write a SHORT description of the bird "%s" for a channel post.

Requirements:
1. 2-3 sentences, no more than %d characters in total
2. Scientific information only: family, order, distinguishing features
3. No emotions or exclamations
4. Plain, simple language

Known facts:
%s

Return only the description.`

const descriptionTemplate = "%s is a bird species featured in our collection."

// Description is a composed description and whether it fell back.
type Description struct {
	Text     string
	Fallback bool
}

// DescriptionComposer writes a short prose description, falling back to
// the first fact and then to a templated sentence. It never returns "".
type DescriptionComposer struct {
	generator ports.TextGenerator
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewDescriptionComposer creates a DescriptionComposer; generator may be nil.
func NewDescriptionComposer(generator ports.TextGenerator, metrics ports.Metrics, logger *zap.Logger) *DescriptionComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DescriptionComposer{
		generator: generator,
		metrics:   metrics,
		logger:    logger.Named("description"),
	}
}

// Compose returns a description of at most MaxDescriptionLen runes.
func (d *DescriptionComposer) Compose(ctx context.Context, subject entities.Subject, facts []string) Description {
	if d.generator != nil {
		text, err := d.generate(ctx, subject, facts)
		if err == nil {
			return Description{Text: text}
		}
		d.logger.Warn("description generation failed", zap.String("subject", subject.Name), zap.Error(err))
	}

	for _, f := range facts {
		if f = strings.TrimSpace(f); f != "" && runeLen(f) <= MaxDescriptionLen {
			return Description{Text: f}
		}
	}

	if d.metrics != nil {
		d.metrics.Fallback("description")
	}
	return Description{Text: fmt.Sprintf(descriptionTemplate, subject.Name), Fallback: true}
}

func (d *DescriptionComposer) generate(ctx context.Context, subject entities.Subject, facts []string) (string, error) {
	var b strings.Builder
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	prompt := fmt.Sprintf(descriptionPrompt, subject.Name, MaxDescriptionLen, b.String())

	resp, err := d.generator.Generate(ctx, prompt, ports.GenerationParams{Temperature: 0.3, MaxTokens: 150, TopP: 0.7})
	if err != nil {
		return "", fmt.Errorf("generating description: %w", err)
	}

	text := cleanGenerated(resp)
	if runeLen(text) > MaxDescriptionLen {
		text = cutAtSentence(text, MaxDescriptionLen)
	}
	if runeLen(text) < MinDescriptionLen {
		return "", fmt.Errorf("description too short (%d chars): %w", runeLen(text), entities.ErrInvalidResponse)
	}
	return text, nil
}

// cutAtSentence returns the longest prefix of text within limit runes that
// ends a sentence, or "" when there is none.
func cutAtSentence(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	r = r[:limit]
	for i := len(r) - 1; i >= 0; i-- {
		switch r[i] {
		case '.', '!', '?':
			return strings.TrimSpace(string(r[:i+1]))
		}
	}
	return ""
}
