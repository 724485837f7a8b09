// Package workers contains the cron-driven retention sweeps
package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
)

const (
	warningRetention = 7 * 24 * time.Hour
	warningSweepSpec = "0 0 * * *"
	sweepTimeout     = 60 * time.Second
)

// WarningSweeper expires warning records that went a week without activity.
// Runs daily at midnight; every user whose warnings lapsed gets told once.
type WarningSweeper struct {
	warnings deps.WarningRepository
	conn     deps.Connector
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewWarningSweeper creates the warning retention sweeper
func NewWarningSweeper(warnings deps.WarningRepository, logger zerolog.Logger) *WarningSweeper {
	return &WarningSweeper{
		warnings: warnings,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "warning_sweeper").Logger(),
	}
}

// SetConnector sets the connector after construction
func (w *WarningSweeper) SetConnector(conn deps.Connector) {
	w.conn = conn
}

// Start schedules the daily sweep
func (w *WarningSweeper) Start() error {
	if _, err := w.cron.AddFunc(warningSweepSpec, w.sweep); err != nil {
		return fmt.Errorf("schedule warning sweep: %w", err)
	}
	w.cron.Start()
	w.logger.Info().Msg("warning sweeper started")
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish
func (w *WarningSweeper) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info().Msg("warning sweeper stopped")
}

func (w *WarningSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	purged, err := w.warnings.PurgeOlderThan(ctx, time.Now().Add(-warningRetention))
	if err != nil {
		w.logger.Error().Err(err).Msg("warning sweep failed")
		return
	}
	if len(purged) == 0 || w.conn == nil {
		return
	}

	// one notice per (chat, user) even when several reason buckets lapsed
	notified := make(map[string]bool)
	for _, rec := range purged {
		key := rec.ChatID + "|" + rec.UserID
		if notified[key] {
			continue
		}
		notified[key] = true

		text := fmt.Sprintf("✅ @%s your warnings have expired.", userTag(rec.UserID))
		if err := w.conn.SendTextMentions(ctx, rec.ChatID, text, []string{rec.UserID}); err != nil {
			w.logger.Warn().Err(err).
				Str("chat", rec.ChatID).
				Str("user", rec.UserID).
				Msg("failed to notify expired warning")
		}
	}

	w.logger.Info().Int("purged", len(purged)).Msg("warning sweep completed")
}

func userTag(user string) string {
	if i := strings.IndexByte(user, '@'); i >= 0 {
		return user[:i]
	}
	return user
}
