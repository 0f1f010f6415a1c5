// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/feather/internal/domain/ports"
)

// TextGenerator is a mock implementation of ports.TextGenerator.
// Responses are returned in order; once exhausted, the last one repeats.
// GenerateFunc, when set, takes precedence.
type TextGenerator struct {
	Responses    []string
	Err          error
	GenerateFunc func(prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string
	Params  []ports.GenerationParams
}

// Generate returns the next configured response or error.
func (m *TextGenerator) Generate(ctx context.Context, prompt string, params ports.GenerationParams) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.Params = append(m.Params, params)
	call := len(m.Prompts) - 1
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.GenerateFunc != nil {
		return m.GenerateFunc(prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if call >= len(m.Responses) {
		call = len(m.Responses) - 1
	}
	return m.Responses[call], nil
}

// CallCount returns the number of Generate calls.
func (m *TextGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
