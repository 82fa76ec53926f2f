package provider

import (
	"context"
	"errors"

	"github.com/ZaguanLabs/gophrase"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements AIProvider using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	MaxTokens   int     // Response token limit (default: 256)
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Rewrite rewrites a phrase using OpenAI chat completions.
func (p *OpenAIProvider) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	systemPrompt, err := SystemPrompt(req.Direction)
	if err != nil {
		return "", err
	}

	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(systemPrompt, req.Phrase))
	if err != nil {
		return "", &gophrase.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableOpenAIError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &gophrase.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return cleanOutput(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) buildRequest(systemPrompt, phrase string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(phrase)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	return isRetryableError(err)
}

// Verify OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)
