package storage

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredDeleter abstracts the cleanup operation.
type ExpiredDeleter interface {
	DeleteExpired() (int64, error)
}

// Sweeper periodically removes expired results. Lazy deletion on read keeps
// responses correct on its own; the sweeper keeps the database from growing
// with rows nobody reads again.
type Sweeper struct {
	store    ExpiredDeleter
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper. If interval is <= 0, it defaults to an hour.
func NewSweeper(store ExpiredDeleter, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce() {
	removed, err := s.store.DeleteExpired()
	if err != nil {
		s.logger.Error("result sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("swept expired results", "removed", removed)
	}
}
