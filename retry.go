package gophrase

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the retry policy used for provider calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// Backoff returns the delay before retry number attempt (zero based).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	delay := c.BaseDelay * time.Duration(1<<attempt)
	if c.MaxDelay > 0 && (delay > c.MaxDelay || delay <= 0) {
		delay = c.MaxDelay
	}
	return delay
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
// Only errors reported by IsRetryable are retried.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			timer := time.NewTimer(cfg.Backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableProvider wraps an AIProvider with retry logic.
type RetryableProvider struct {
	provider AIProvider
	config   RetryConfig
	logger   *slog.Logger
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider AIProvider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
		logger:   slog.Default(),
	}
}

// Rewrite implements AIProvider with retry logic.
func (p *RetryableProvider) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	attempt := 0
	return WithRetry(ctx, p.config, func() (string, error) {
		attempt++
		if attempt > 1 {
			p.logger.Debug("retrying provider request",
				"module", "retry", "action", "rewrite", "attempt", attempt)
		}
		return p.provider.Rewrite(ctx, req)
	})
}
