// Package scheduler periodically trims expired entries from the phrase cache.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Trimmer is the part of the cache the scheduler drives.
type Trimmer interface {
	Trim(ctx context.Context) (int, error)
	Size() int
}

// Scheduler runs Trim on a fixed interval until stopped.
type Scheduler struct {
	cache      Trimmer
	interval   time.Duration
	logger     *slog.Logger
	onTrim     func(removed, remaining int)
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current trim
	mu         sync.Mutex         // protects cancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithOnTrim registers a callback invoked after every successful trim.
func WithOnTrim(fn func(removed, remaining int)) Option {
	return func(s *Scheduler) {
		s.onTrim = fn
	}
}

// New creates a scheduler. It does nothing until Start is called.
func New(cache Trimmer, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		cache:    cache,
		interval: interval,
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the trim loop. The first trim runs immediately.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("scheduler started", "module", "scheduler", "action", "trim", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

// Stop cancels an ongoing trim and waits for the loop to exit. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		s.logger.Info("scheduler stopped", "module", "scheduler", "action", "trim", "result", "ok")
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.trim()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.trim()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) trim() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	removed, err := s.cache.Trim(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Warn("scheduled trim cancelled", "module", "scheduler", "action", "trim", "result", "cancelled")
			return
		}
		s.logger.Error("scheduled trim failed", "module", "scheduler", "action", "trim", "result", "failed", "error", err)
		return
	}

	remaining := s.cache.Size()
	s.logger.Debug("scheduled trim completed", "module", "scheduler", "action", "trim", "result", "ok",
		"removed", removed, "remaining", remaining)
	if s.onTrim != nil {
		s.onTrim(removed, remaining)
	}
}
