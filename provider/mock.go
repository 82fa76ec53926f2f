package provider

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/gophrase"
)

// MockProvider is a mock AI provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of phrase to rewritten phrase
	Err          error             // Returned by every call when set
	CallCount    int               // Number of times Rewrite was called
	LastRequest  *RewriteRequest   // Last request received

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"break a leg":                   "Good luck with your performance.",
			"it's raining cats and dogs":    "It is raining very heavily.",
			"hello there":                   "hi",
			"Your call is important to us.": "We will answer your call soon.",
		},
	}
}

// Rewrite returns the canned rewrite for the phrase, or an empty string
// when none is configured.
func (m *MockProvider) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if err := ctx.Err(); err != nil {
		return "", &gophrase.ProviderError{Message: "request cancelled", Cause: err}
	}
	if m.Err != nil {
		return "", m.Err
	}

	return m.Translations[req.Phrase], nil
}

// Calls returns the call count.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)
