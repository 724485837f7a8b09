// Package moderation contains the content-policy scanner and the warning
// state machine
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/pkg/retry"
)

// Policy names used for the per-chat permit lists
const (
	PolicyAntiLink  = "antilink"
	PolicyAntiSales = "antisales"
)

// Engine runs content-policy scans and the warning/threshold state machine
type Engine struct {
	thresholds *config.WarningConfig
	bot        *config.BotConfig
	settings   deps.SettingsRepository
	warnings   deps.WarningRepository
	perms      deps.PermissionRepository
	groups     *groupinfo.Service
	conn       deps.Connector
	logger     zerolog.Logger

	// locks serializes the read-modify-write on one (chat, user, reason)
	// bucket so concurrent violations cannot both observe the pre-threshold
	// count and double-fire the kick
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a new moderation engine.
// The connector is attached later via SetConnector.
func NewEngine(
	thresholds *config.WarningConfig,
	bot *config.BotConfig,
	settings deps.SettingsRepository,
	warnings deps.WarningRepository,
	perms deps.PermissionRepository,
	groups *groupinfo.Service,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		thresholds: thresholds,
		bot:        bot,
		settings:   settings,
		warnings:   warnings,
		perms:      perms,
		groups:     groups,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// SetConnector sets the connector after construction
func (e *Engine) SetConnector(conn deps.Connector) {
	e.conn = conn
}

// Scan checks one inbound message against the chat's enabled content
// policies and enforces the first violated one. Store read failures fail
// closed: no enforcement runs on a chat whose settings cannot be read.
func (e *Engine) Scan(ctx context.Context, ev *entities.MessageEvent) {
	if ev.FromMe || !entities.IsGroupChat(ev.ChatID) {
		return
	}

	settings, err := e.settings.Get(ctx, ev.ChatID)
	if err != nil {
		if !errors.Is(err, guarderrors.ErrSettingsNotFound) {
			e.logger.Error().Err(err).Str("chat", ev.ChatID).Msg("Failed to read group settings, skipping scan")
		}
		return
	}
	if !settings.BotEnabled {
		return
	}
	if !settings.AntiLinkEnabled && !settings.AntiSalesEnabled {
		return
	}

	if settings.AntiSalesEnabled && IsSalesContent(ev.Text, ev.Media) {
		e.enforce(ctx, ev, settings, PolicyAntiSales, ReasonSales)
		return
	}

	if settings.AntiLinkEnabled && ContainsLink(ev.Text) {
		e.enforce(ctx, ev, settings, PolicyAntiLink, ReasonLinks)
	}
}

// enforce deletes the offending message and runs the warning state machine
// unless the sender is exempt
func (e *Engine) enforce(ctx context.Context, ev *entities.MessageEvent, settings *entities.GroupSettings, policy, reason string) {
	exempt, err := e.isExempt(ctx, ev.ChatID, ev.Sender, settings, policy)
	if err != nil {
		e.logger.Error().Err(err).Str("chat", ev.ChatID).Str("user", ev.Sender).Msg("Exemption check failed, skipping enforcement")
		return
	}
	if exempt {
		return
	}

	if err := e.conn.DeleteMessage(ctx, ev.ChatID, ev.MessageID, ev.Sender); err != nil {
		e.logger.Error().Err(err).Str("chat", ev.ChatID).Str("message", ev.MessageID).Msg("Failed to delete offending message")
		return
	}

	e.logger.Info().
		Str("chat", ev.ChatID).
		Str("user", ev.Sender).
		Str("reason", reason).
		Msg("Policy violation enforced")

	if err := e.IssueWarning(ctx, ev.ChatID, ev.Sender, reason); err != nil {
		e.logger.Error().Err(err).Str("chat", ev.ChatID).Str("user", ev.Sender).Msg("Failed to issue warning")
	}
}

// isExempt applies the bypass chain: bot owner first, then the chat's permit
// list, then admin membership when the chat permits admin bypass
func (e *Engine) isExempt(ctx context.Context, chatID, sender string, settings *entities.GroupSettings, policy string) (bool, error) {
	if sender == e.bot.OwnerID {
		return true, nil
	}

	permitted, err := e.perms.IsPermitted(ctx, chatID, sender, policy)
	if err != nil {
		return false, fmt.Errorf("permit list: %w", err)
	}
	if permitted {
		return true, nil
	}

	if settings.PermitAdminBypass && e.groups.IsAdmin(ctx, chatID, sender) {
		return true, nil
	}

	return false, nil
}

// IssueWarning increments the user's count in the given reason bucket. Below
// the threshold the user gets a notice with the remaining allowance; at or
// above it the user is removed from the chat and the bucket resets.
func (e *Engine) IssueWarning(ctx context.Context, chatID, userID, reason string) error {
	unlock := e.lock(chatID, userID, reason)
	defer unlock()

	count := 0
	rec, err := e.warnings.Get(ctx, chatID, userID, reason)
	if err != nil && !errors.Is(err, guarderrors.ErrWarningNotFound) {
		return fmt.Errorf("fetch warning record: %w", err)
	}
	if rec != nil {
		count = rec.Count
	}
	count++

	if err := e.warnings.Upsert(ctx, &entities.WarningRecord{
		ChatID: chatID,
		UserID: userID,
		Reason: reason,
		Count:  count,
	}); err != nil {
		return fmt.Errorf("persist warning record: %w", err)
	}

	threshold := e.thresholds.Threshold(reason)
	remaining := threshold - count

	notice := fmt.Sprintf("⚠️ @%s, you have been warned for: %s. This is warning #%d.", userTag(userID), reason, count)
	if remaining > 0 {
		notice += fmt.Sprintf(" You will be removed after %d more warning(s).", remaining)
	}
	if err := e.conn.SendTextMentions(ctx, chatID, notice, []string{userID}); err != nil {
		e.logger.Error().Err(err).Str("chat", chatID).Msg("Failed to send warning notice")
	}

	if remaining > 0 {
		return nil
	}

	err = retry.Default.Do(ctx, func() error {
		return e.conn.RemoveParticipants(ctx, chatID, []string{userID})
	})
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}

	e.groups.Invalidate(chatID)
	e.logger.Info().
		Str("chat", chatID).
		Str("user", userID).
		Str("reason", reason).
		Int("count", count).
		Msg("User removed after reaching warning threshold")

	// Reset the bucket so a re-added user starts from zero
	if err := e.warnings.Delete(ctx, chatID, userID, reason); err != nil {
		return fmt.Errorf("reset warning record: %w", err)
	}
	return nil
}

// Reset deletes every warning bucket of a user in a chat
func (e *Engine) Reset(ctx context.Context, chatID, userID string) error {
	if err := e.warnings.DeleteAll(ctx, chatID, userID); err != nil {
		return fmt.Errorf("reset warnings: %w", err)
	}
	notice := fmt.Sprintf("🔄 Warnings for @%s have been reset.", userTag(userID))
	return e.conn.SendTextMentions(ctx, chatID, notice, []string{userID})
}

// List renders the chat's current warning records
func (e *Engine) List(ctx context.Context, chatID string) (string, error) {
	recs, err := e.warnings.ListByChat(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("list warnings: %w", err)
	}
	if len(recs) == 0 {
		return "📋 No warnings found for this group.", nil
	}

	var b strings.Builder
	b.WriteString("📋 *Group Warnings*\n\n")
	for _, rec := range recs {
		fmt.Fprintf(&b, "👤 @%s — %d warning(s) for %s\n", userTag(rec.UserID), rec.Count, rec.Reason)
	}
	return b.String(), nil
}

// lock acquires the bucket lock and returns its release func
func (e *Engine) lock(chatID, userID, reason string) func() {
	key := chatID + "|" + userID + "|" + reason

	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// userTag strips the server part of a user id for @-mention rendering
func userTag(userID string) string {
	if i := strings.IndexByte(userID, '@'); i >= 0 {
		return userID[:i]
	}
	return userID
}
