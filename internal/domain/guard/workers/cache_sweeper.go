package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
)

const (
	cacheRetention = 3 * 24 * time.Hour
	cacheSweepSpec = "0 * * * *"
)

// CacheSweeper trims the durable tier of the shadow cache every hour. The
// in-memory tier expires on its own TTL and needs no sweeping.
type CacheSweeper struct {
	cache  *antidelete.Service
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewCacheSweeper creates the cached-message retention sweeper
func NewCacheSweeper(cache *antidelete.Service, logger zerolog.Logger) *CacheSweeper {
	return &CacheSweeper{
		cache:  cache,
		cron:   cron.New(),
		logger: logger.With().Str("component", "cache_sweeper").Logger(),
	}
}

// Start schedules the hourly sweep
func (w *CacheSweeper) Start() error {
	if _, err := w.cron.AddFunc(cacheSweepSpec, w.sweep); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	w.cron.Start()
	w.logger.Info().Msg("cache sweeper started")
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish
func (w *CacheSweeper) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info().Msg("cache sweeper stopped")
}

func (w *CacheSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	purged, err := w.cache.PurgeOlderThan(ctx, cacheRetention)
	if err != nil {
		w.logger.Error().Err(err).Msg("cache sweep failed")
		return
	}
	if purged > 0 {
		w.logger.Info().Int64("purged", purged).Msg("cache sweep completed")
	}
}
