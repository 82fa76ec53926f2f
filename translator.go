package gophrase

import (
	"context"
	"log/slog"
	"strings"
)

// Translator resolves phrases through the cache first and the AI provider on
// a miss. Non-empty provider results are written back to the cache.
type Translator struct {
	provider AIProvider
	cache    PhraseCache
	observer Observer
	logger   *slog.Logger
}

// AIProvider is the interface for AI rewrite backends.
type AIProvider interface {
	Rewrite(ctx context.Context, req RewriteRequest) (string, error)
}

// RewriteRequest contains the parameters for a rewrite request.
type RewriteRequest struct {
	Phrase    string
	Direction Direction
}

// PhraseCache is the interface for the phrase cache. Lookup matches a phrase
// against both stored phrases and stored translations.
type PhraseCache interface {
	Lookup(phrase string) (string, bool)
	Store(ctx context.Context, phrase, translation string) error
}

// ProviderOutcome classifies a provider call for observers.
type ProviderOutcome string

const (
	OutcomeOK    ProviderOutcome = "ok"
	OutcomeEmpty ProviderOutcome = "empty"
	OutcomeError ProviderOutcome = "error"
)

// Observer receives translation events, e.g. for metrics.
type Observer interface {
	ObserveLookup(direction Direction, hit bool)
	ObserveProvider(direction Direction, outcome ProviderOutcome)
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the phrase cache.
func WithCache(cache PhraseCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithObserver registers an event observer.
func WithObserver(observer Observer) TranslatorOption {
	return func(t *Translator) {
		t.observer = observer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator with the given provider.
func NewTranslator(provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider: provider,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate resolves phrase in the given direction.
//
// Provider failures are not returned as errors: the result has Source
// SourceNone and carries the cause in Result.Err. An error is returned for
// invalid input, and for a failed cache write, in which case the populated
// result is returned alongside the *CacheError.
func (t *Translator) Translate(ctx context.Context, phrase string, direction Direction) (*Result, error) {
	if !direction.Valid() {
		return nil, &InvalidDirectionError{Value: string(direction)}
	}
	if strings.TrimSpace(phrase) == "" {
		return nil, ErrEmptyPhrase
	}

	result := &Result{
		Phrase:    phrase,
		Direction: direction,
		Source:    SourceNone,
	}

	if t.cache != nil {
		cached, ok := t.cache.Lookup(phrase)
		t.observeLookup(direction, ok)
		if ok {
			t.logger.Debug("translation cached",
				"module", "translator", "action", "lookup", "result", "hit", "direction", direction.String())
			result.Text = cached
			result.Source = SourceCache
			return result, nil
		}
	}

	if t.provider == nil {
		return result, nil
	}

	t.logger.Info("requesting translation",
		"module", "translator", "action", "rewrite", "direction", direction.String())

	text, err := t.provider.Rewrite(ctx, RewriteRequest{Phrase: phrase, Direction: direction})
	if err != nil {
		t.logger.Warn("provider request failed",
			"module", "translator", "action", "rewrite", "result", "failed",
			"direction", direction.String(), "error", err)
		t.observeProvider(direction, OutcomeError)
		result.Err = err
		return result, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		t.logger.Warn("provider returned empty translation",
			"module", "translator", "action", "rewrite", "result", "empty", "direction", direction.String())
		t.observeProvider(direction, OutcomeEmpty)
		return result, nil
	}
	t.observeProvider(direction, OutcomeOK)

	result.Text = text
	result.Source = SourceProvider

	if t.cache != nil {
		if err := t.cache.Store(ctx, phrase, text); err != nil {
			if !IsCacheError(err) {
				err = &CacheError{Message: "storing translation", Cause: err}
			}
			return result, err
		}
	}

	return result, nil
}

// NTToND rewrites phrase into a literal, direct form.
func (t *Translator) NTToND(ctx context.Context, phrase string) (*Result, error) {
	return t.Translate(ctx, phrase, DirectionNTToND)
}

// NDToNT rewrites phrase into a figurative, idiomatic form.
func (t *Translator) NDToNT(ctx context.Context, phrase string) (*Result, error) {
	return t.Translate(ctx, phrase, DirectionNDToNT)
}

func (t *Translator) observeLookup(direction Direction, hit bool) {
	if t.observer != nil {
		t.observer.ObserveLookup(direction, hit)
	}
}

func (t *Translator) observeProvider(direction Direction, outcome ProviderOutcome) {
	if t.observer != nil {
		t.observer.ObserveProvider(direction, outcome)
	}
}
