package cache

import (
	"context"
	"sync"
)

// MemoryPersister keeps the last saved snapshot in memory. Nothing survives
// the process.
type MemoryPersister struct {
	mu       sync.RWMutex
	snapshot map[string]Entry
	saves    int
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snapshot: make(map[string]Entry)}
}

// NewMemoryPersisterWith creates an in-memory persister preloaded with entries.
func NewMemoryPersisterWith(entries map[string]Entry) *MemoryPersister {
	p := NewMemoryPersister()
	for k, v := range entries {
		p.snapshot[k] = v
	}
	return p
}

// Load returns a copy of the last saved snapshot.
func (p *MemoryPersister) Load(_ context.Context) (map[string]Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyEntries(p.snapshot), nil
}

// Save replaces the snapshot with a copy of entries.
func (p *MemoryPersister) Save(_ context.Context, entries map[string]Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = copyEntries(entries)
	p.saves++
	return nil
}

// Len returns the number of entries in the snapshot.
func (p *MemoryPersister) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.snapshot)
}

// Saves returns how many times Save was called.
func (p *MemoryPersister) Saves() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saves
}

func copyEntries(src map[string]Entry) map[string]Entry {
	dst := make(map[string]Entry, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Verify MemoryPersister implements Persister
var _ Persister = (*MemoryPersister)(nil)
