package entities

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "wrapped marker", err: fmt.Errorf("calling api: %w", ErrTransient), expected: true},
		{name: "deadline", err: fmt.Errorf("x: %w", context.DeadlineExceeded), expected: true},
		{name: "rate limited", err: errors.New("status 429 too many requests"), expected: true},
		{name: "server error", err: errors.New("unexpected status 503"), expected: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "validation", err: fmt.Errorf("name: %w", ErrValidationRejected), expected: false},
		{name: "plain", err: errors.New("bad request"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}
