package gophrase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds in-flight translations in TranslateBatch
// when no explicit limit is given.
const DefaultBatchConcurrency = 4

// TranslateBatch translates phrases concurrently in one direction, running at
// most concurrency translations at a time. Results are returned in input
// order, one per phrase. Duplicate phrases are resolved once and share the
// outcome. Blank phrases produce a SourceNone result whose Err is
// ErrEmptyPhrase.
//
// The returned error is non-nil for an invalid direction (with no results) or
// when one or more cache writes failed, in which case every result is still
// populated and the error joins the underlying *CacheError values.
func (t *Translator) TranslateBatch(ctx context.Context, phrases []string, direction Direction, concurrency int) ([]*Result, error) {
	if !direction.Valid() {
		return nil, &InvalidDirectionError{Value: string(direction)}
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	// Deduplicate while keeping first-seen order
	index := make(map[string]int, len(phrases))
	var unique []string
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, seen := index[p]; !seen {
			index[p] = len(unique)
			unique = append(unique, p)
		}
	}

	resolved := make([]*Result, len(unique))
	errs := make([]error, len(unique))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, phrase := range unique {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				resolved[i] = &Result{Phrase: phrase, Direction: direction, Source: SourceNone, Err: err}
				return nil
			}
			resolved[i], errs[i] = t.Translate(ctx, phrase, direction)
			return nil // per-phrase failures never cancel the batch
		})
	}
	_ = g.Wait()

	results := make([]*Result, len(phrases))
	for i, p := range phrases {
		idx, ok := index[p]
		if !ok || resolved[idx] == nil {
			results[i] = &Result{Phrase: p, Direction: direction, Source: SourceNone, Err: ErrEmptyPhrase}
			continue
		}
		r := *resolved[idx]
		results[i] = &r
	}

	t.logger.Debug("batch translated",
		"module", "translator", "action", "batch", "phrases", len(phrases), "unique", len(unique))

	return results, errors.Join(errs...)
}
