package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/ZaguanLabs/gophrase"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when AnthropicConfig.Model is empty.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicProvider implements AIProvider for the Anthropic API.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string
}

// NewAnthropicProvider creates a new Anthropic provider. SDK level retries
// are disabled; wrap the provider in gophrase.RetryableProvider instead.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Rewrite rewrites a phrase using the Messages API.
func (p *AnthropicProvider) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	systemPrompt, err := SystemPrompt(req.Direction)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Messages.New(ctx, p.buildParams(systemPrompt, req.Phrase))
	if err != nil {
		return "", &gophrase.ProviderError{
			Message:   "Anthropic API call failed",
			Cause:     err,
			Retryable: isRetryableAnthropicError(err),
		}
	}

	// Extract text content from response (skip thinking blocks)
	var text strings.Builder
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(v.Text)
		}
	}

	return cleanOutput(text.String()), nil
}

func (p *AnthropicProvider) buildParams(systemPrompt, phrase string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(UserMessage(phrase))),
		},
		Temperature: anthropic.Float(p.temperature),
	}
}

func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return retryableStatus(apiErr.StatusCode)
	}
	return isRetryableError(err)
}

// Verify AnthropicProvider implements AIProvider
var _ AIProvider = (*AnthropicProvider)(nil)
