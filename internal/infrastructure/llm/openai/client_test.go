package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model and base url",
			cfg: config.LLMConfig{
				APIKey:  "test-key",
				Model:   "gemini-1.5-flash",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, status int, content string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(config.LLMConfig{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	return c
}

func TestClient_Generate(t *testing.T) {
	var req chatRequest
	srv := completionServer(t, http.StatusOK, "  Goldcrest\n", &req)

	out, err := newTestClient(t, srv).Generate(context.Background(), "Name one European bird.",
		ports.GenerationParams{Temperature: 0.7, MaxTokens: 50, TopP: 0.8})

	require.NoError(t, err)
	assert.Equal(t, "Goldcrest", out)
	assert.Equal(t, "test-model", req.Model)
	assert.InDelta(t, 0.7, req.Temperature, 0.001)
	assert.InDelta(t, 0.8, req.TopP, 0.001)
	assert.Equal(t, 50, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Name one European bird.", req.Messages[0].Content)
}

func TestClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		content       string
		wantTransient bool
		wantInvalid   bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "server error", status: http.StatusServiceUnavailable, wantTransient: true},
		{name: "bad request", status: http.StatusBadRequest},
		{name: "empty content", status: http.StatusOK, content: "   ", wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.content, nil)

			_, err := newTestClient(t, srv).Generate(context.Background(), "prompt", ports.GenerationParams{})

			require.Error(t, err)
			assert.Equal(t, tt.wantTransient, errors.Is(err, entities.ErrTransient))
			assert.Equal(t, tt.wantInvalid, errors.Is(err, entities.ErrInvalidResponse))
		})
	}
}

func TestClient_Generate_Cancelled(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "Goldcrest", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).Generate(ctx, "prompt", ports.GenerationParams{})

	assert.ErrorIs(t, err, context.Canceled)
}
