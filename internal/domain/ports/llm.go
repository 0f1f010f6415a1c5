// Package ports defines interfaces for external service communication.
package ports

import "context"

// GenerationParams tunes a single text generation request.
type GenerationParams struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// TextGenerator produces free text from a prompt. Implementations must
// respect ctx cancellation and deadlines and must be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
