// Package cache provides the persistent phrase cache and its storage backends.
package cache

import (
	"context"
	"time"
)

// DefaultExpiration is how long an entry stays eligible for lookups.
const DefaultExpiration = 7 * 24 * time.Hour

// Entry is a cached translation, keyed externally by its source phrase.
type Entry struct {
	Translation string  `json:"translation"`
	Timestamp   float64 `json:"timestamp"` // Seconds since the Unix epoch
}

// Record is an Entry together with its source phrase.
type Record struct {
	Phrase      string  `json:"phrase"`
	Translation string  `json:"translation"`
	Timestamp   float64 `json:"timestamp"`
}

// CreatedAt returns the record timestamp as a time.Time.
func (r Record) CreatedAt() time.Time {
	return fromTimestamp(r.Timestamp)
}

// Persister stores and restores the complete cache as a single unit.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_persister.go -package=mocks
type Persister interface {
	// Load returns the persisted entries. Missing storage yields an empty map
	// and a nil error.
	Load(ctx context.Context) (map[string]Entry, error)

	// Save replaces the persisted state with entries.
	Save(ctx context.Context, entries map[string]Entry) error
}

// timestamp converts t to fractional Unix seconds. Whole seconds stay exact.
func timestamp(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromTimestamp(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
