package gophrase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	if limiter.Burst() != 60 {
		t.Errorf("Expected burst 60, got %d", limiter.Burst())
	}

	if float64(limiter.Limit()) != 1.0 {
		t.Errorf("Expected 1 token per second, got %v", limiter.Limit())
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	// Should be able to acquire burst size immediately
	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	// Fourth should fail
	if limiter.Allow() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	})

	var wg sync.WaitGroup
	var acquired atomic.Int64

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow() {
				acquired.Add(1)
			}
		}()
	}

	wg.Wait()

	if acquired.Load() != 10 {
		t.Errorf("Expected 10 acquired, got %d", acquired.Load())
	}
}

func TestRateLimitedProvider(t *testing.T) {
	inner := &mockProviderForRateLimit{response: "rewritten"}

	provider := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})

	ctx := context.Background()
	req := RewriteRequest{Phrase: "a", Direction: DirectionNTToND}

	// First two should succeed immediately
	if _, err := provider.Rewrite(ctx, req); err != nil {
		t.Errorf("First rewrite failed: %v", err)
	}
	if _, err := provider.Rewrite(ctx, req); err != nil {
		t.Errorf("Second rewrite failed: %v", err)
	}

	// Third should wait for rate limit (100ms at 10/sec)
	start := time.Now()
	_, err := provider.Rewrite(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Third rewrite failed: %v", err)
	}

	if elapsed < 50*time.Millisecond {
		t.Errorf("Expected rate limit wait, but returned in %v", elapsed)
	}

	if inner.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.calls)
	}
}

func TestRateLimitedProvider_ContextCancelled(t *testing.T) {
	inner := &mockProviderForRateLimit{response: "rewritten"}

	provider := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 1, // Very slow
		BurstSize:         1,
	})

	req := RewriteRequest{Phrase: "a", Direction: DirectionNTToND}

	// Drain the bucket
	_, _ = provider.Rewrite(context.Background(), req)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.Rewrite(ctx, req)
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if providerErr.Retryable {
		t.Error("Rate limit cancellation should not be retryable")
	}
	if inner.calls != 1 {
		t.Errorf("Inner provider should not be called after cancellation, got %d calls", inner.calls)
	}
}

// Mock provider for rate limit tests
type mockProviderForRateLimit struct {
	response string
	calls    int
}

func (m *mockProviderForRateLimit) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	m.calls++
	return m.response, nil
}
