// Package provider defines the AI provider configuration and implementations.
package provider

import (
	"errors"
	"strings"

	"github.com/ZaguanLabs/gophrase"
)

// AIProvider is the interface for AI rewrite backends.
// This is an alias to the main package interface for convenience.
type AIProvider = gophrase.AIProvider

// RewriteRequest is an alias to the main package type.
type RewriteRequest = gophrase.RewriteRequest

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// DefaultMaxTokens bounds the length of a rewritten phrase.
const DefaultMaxTokens = 256

// DefaultTemperature is used when Config.Temperature is zero.
const DefaultTemperature = 0.3

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
)

// Config holds the configuration for an AI provider.
type Config struct {
	Provider    string  // openai, anthropic, mock
	APIKey      string  // credential for the remote service
	Model       string  // model name (provider default if empty)
	MaxTokens   int     // response token limit (default: 256)
	Temperature float64 // sampling temperature (default: 0.3)
	BaseURL     string  // custom API endpoint (optional)
}

// NewProvider creates an AI provider based on the config.
func NewProvider(cfg Config) (AIProvider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderOpenAI
	}

	if name == ProviderMock {
		return NewMockProvider(), nil
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch name {
	case ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
			BaseURL:     cfg.BaseURL,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
		}), nil
	default:
		return nil, ErrInvalidProvider
	}
}

// retryableStatus reports whether an HTTP status from a provider API is
// worth retrying.
func retryableStatus(code int) bool {
	return code == 429 || code == 408 || code >= 500
}

// isRetryableError falls back to message inspection for transport errors
// that carry no status code.
func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
