package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper prunes dead cache entries and reports the live count.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

// Janitor periodically sweeps expired entries out of the cache so the
// entry gauge and memory footprint track reality between reads.
type Janitor struct {
	cache    Sweeper
	interval time.Duration
}

// NewJanitor creates a Janitor sweeping at the given interval.
func NewJanitor(cache Sweeper, interval time.Duration) *Janitor {
	return &Janitor{cache: cache, interval: interval}
}

// Run sweeps the cache until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			live := j.cache.Sweep(ctx)
			slog.LogAttrs(ctx, slog.LevelDebug, "cache sweep",
				slog.Int("live_entries", live),
			)
		case <-ctx.Done():
			return nil
		}
	}
}
