package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gophrase"
	"github.com/sashabaranov/go-openai"
)

func newOpenAITestServer(t *testing.T, status int, body string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	if p.model != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %q", p.model)
	}
	if p.maxTokens != DefaultMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", DefaultMaxTokens, p.maxTokens)
	}
	if p.temperature != float32(DefaultTemperature) {
		t.Errorf("Expected default temperature %v, got %v", DefaultTemperature, p.temperature)
	}
}

func TestBuildRequest(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o", MaxTokens: 64})

	req := p.buildRequest(literalPrompt, "break a leg")

	if req.Model != "gpt-4o" || req.MaxTokens != 64 {
		t.Errorf("Unexpected model settings: %s / %d", req.Model, req.MaxTokens)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem || req.Messages[0].Content != literalPrompt {
		t.Error("First message should be the system prompt")
	}
	if !strings.Contains(req.Messages[1].Content, "break a leg") {
		t.Errorf("User message should contain the phrase, got: %s", req.Messages[1].Content)
	}
}

func TestOpenAIProvider_Rewrite(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := newOpenAITestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "\"Good luck with your performance.\""}, "finish_reason": "stop"}]
	}`, &seen)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})

	text, err := p.Rewrite(context.Background(), RewriteRequest{
		Phrase:    "break a leg",
		Direction: gophrase.DirectionNTToND,
	})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	if text != "Good luck with your performance." {
		t.Errorf("Unexpected rewrite: %q", text)
	}

	if len(seen.Messages) != 2 || seen.Messages[0].Content != literalPrompt {
		t.Error("Server should receive the literal system prompt")
	}
}

func TestOpenAIProvider_RewriteNoChoices(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusOK, `{"id": "chatcmpl-1", "choices": []}`, nil)
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})

	_, err := p.Rewrite(context.Background(), RewriteRequest{Phrase: "hi", Direction: gophrase.DirectionNDToNT})

	var providerErr *gophrase.ProviderError
	if !errors.As(err, &providerErr) || !providerErr.Retryable {
		t.Errorf("Expected retryable ProviderError, got %v", err)
	}
}

func TestOpenAIProvider_RewriteAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpenAITestServer(t, tt.status, `{"error": {"message": "failure", "type": "test_error"}}`, nil)
			p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})

			_, err := p.Rewrite(context.Background(), RewriteRequest{Phrase: "hi", Direction: gophrase.DirectionNTToND})

			var providerErr *gophrase.ProviderError
			if !errors.As(err, &providerErr) {
				t.Fatalf("Expected ProviderError, got %v", err)
			}
			if providerErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", providerErr.Retryable, tt.retryable)
			}
		})
	}
}

func TestOpenAIProvider_InvalidDirection(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	_, err := p.Rewrite(context.Background(), RewriteRequest{Phrase: "hi", Direction: "up"})

	var dirErr *gophrase.InvalidDirectionError
	if !errors.As(err, &dirErr) {
		t.Errorf("Expected InvalidDirectionError, got %v", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("context deadline exceeded (Client.Timeout exceeded)"), true},
		{errors.New("status 503"), true},
		{errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.expected {
			t.Errorf("isRetryableError(%q) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}
