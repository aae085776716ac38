package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

func TestChat_JSONMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.Equal(t, 600, req.MaxTokens)
		assert.InDelta(t, 0.5, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"draft\":\"text\"}"}}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "draft"},
		{Role: "user", Content: "question"},
	}, driven.ChatOptions{MaxTokens: 600, Temperature: 0.5, JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"draft":"text"}`, out)
}

func TestChat_PlainMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.ResponseFormat)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"advice"}}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "advice", out)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, ``, domain.ErrServiceUnavailable},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.ErrUpstream},
		{"api error", http.StatusOK, `{"error":{"message":"bad"}}`, domain.ErrUpstream},
		{"malformed", http.StatusOK, `<html>`, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}
