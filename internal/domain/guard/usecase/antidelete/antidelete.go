// Package antidelete keeps shadow copies of messages so revoked ones can be
// restored into the chat
package antidelete

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

const (
	memoryCacheSize = 4096
	memoryCacheTTL  = 72 * time.Hour
)

// Scope names accepted by SetScope
const (
	ScopeGlobal  = "global"
	ScopeGroup   = "group"
	ScopePrivate = "private"
)

// Service captures inbound message bodies into a two-tier shadow cache and
// answers deletion events with a restore reply. The memory tier absorbs the
// read on the hot path; the durable tier survives restarts and is swept by
// the purge worker.
type Service struct {
	conn   deps.Connector
	scopes deps.ScopedToggleRepository
	cache  deps.MessageCacheRepository
	memory *expirable.LRU[string, *entities.CachedMessage]
	logger zerolog.Logger
}

// NewService creates the anti-delete service
func NewService(
	scopes deps.ScopedToggleRepository,
	cache deps.MessageCacheRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		scopes: scopes,
		cache:  cache,
		memory: expirable.NewLRU[string, *entities.CachedMessage](memoryCacheSize, nil, memoryCacheTTL),
		logger: logger,
	}
}

// SetConnector sets the connector after construction
func (s *Service) SetConnector(conn deps.Connector) {
	s.conn = conn
}

// Enabled reports whether a chat is covered by the scope chain:
// global, then group-wide, then private-wide, then the per-chat flag.
func (s *Service) Enabled(ctx context.Context, chatID string) (bool, error) {
	global, groupOnly, privateOnly, err := s.scopes.GetScopes(ctx)
	if err != nil {
		return false, fmt.Errorf("anti-delete scopes: %w", err)
	}
	if global {
		return true, nil
	}
	if entities.IsGroupChat(chatID) {
		if groupOnly {
			return true, nil
		}
	} else if privateOnly {
		return true, nil
	}
	return s.scopes.IsChatEnabled(ctx, chatID)
}

// SetScope flips one wide scope on or off
func (s *Service) SetScope(ctx context.Context, scope string, enabled bool) error {
	return s.scopes.SetScope(ctx, scope, enabled)
}

// SetChat flips the per-chat flag on or off
func (s *Service) SetChat(ctx context.Context, chatID string, enabled bool) error {
	return s.scopes.SetChat(ctx, chatID, enabled)
}

// Capture stores a shadow copy of an inbound message. Messages from the bot
// itself and messages without text are never captured; a scope read failure
// means no capture.
func (s *Service) Capture(ctx context.Context, ev *entities.MessageEvent) error {
	if ev.FromMe || !ev.HasText() {
		return nil
	}

	enabled, err := s.Enabled(ctx, ev.ChatID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chat", ev.ChatID).Msg("anti-delete scope read failed, skipping capture")
		return nil
	}
	if !enabled {
		return nil
	}

	msg := &entities.CachedMessage{
		ChatID:     ev.ChatID,
		MessageID:  ev.MessageID,
		Sender:     ev.Sender,
		Body:       ev.Text,
		CapturedAt: time.Now(),
	}

	s.memory.Add(cacheKey(ev.ChatID, ev.MessageID), msg)
	if err := s.cache.Save(ctx, msg); err != nil {
		return fmt.Errorf("save shadow copy: %w", err)
	}
	return nil
}

// Lookup returns the shadow copy of a message, memory tier first. A message
// that was never captured yields ErrMessageNotCached.
func (s *Service) Lookup(ctx context.Context, chatID, messageID string) (*entities.CachedMessage, error) {
	if msg, ok := s.memory.Get(cacheKey(chatID, messageID)); ok {
		return msg, nil
	}
	return s.cache.Get(ctx, chatID, messageID)
}

// HandleDeletion restores a revoked message into its chat. Deletions by the
// bot itself are ignored, and a miss in both tiers is a no-op: the deleted
// message simply predates coverage.
func (s *Service) HandleDeletion(ctx context.Context, ev *entities.DeletionEvent) error {
	if s.conn != nil && ev.Actor == s.conn.BotID() {
		return nil
	}

	msg, err := s.Lookup(ctx, ev.ChatID, ev.MessageID)
	if err != nil {
		if errors.Is(err, guarderrors.ErrMessageNotCached) {
			return nil
		}
		return fmt.Errorf("lookup shadow copy: %w", err)
	}

	text := fmt.Sprintf("🛡️ Anti-delete: @%s deleted this message:\n\n%s", userTag(msg.Sender), msg.Body)
	if err := s.conn.SendTextMentions(ctx, ev.ChatID, text, []string{msg.Sender}); err != nil {
		return fmt.Errorf("send restore: %w", err)
	}

	s.logger.Info().
		Str("chat", ev.ChatID).
		Str("message", ev.MessageID).
		Str("sender", msg.Sender).
		Msg("restored deleted message")
	return nil
}

// PurgeOlderThan removes durable shadow copies captured more than the given
// age ago. The memory tier expires on its own TTL.
func (s *Service) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return s.cache.PurgeOlderThan(ctx, time.Now().Add(-age))
}

func cacheKey(chatID, messageID string) string {
	return chatID + "|" + messageID
}

func userTag(user string) string {
	for i := 0; i < len(user); i++ {
		if user[i] == '@' {
			return user[:i]
		}
	}
	return user
}
