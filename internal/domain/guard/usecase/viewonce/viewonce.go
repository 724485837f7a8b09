// Package viewonce captures view-once media and reposts it as a regular
// message
package viewonce

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

const repostCaption = "👁️ View-once repost"

// Service watches for view-once media in covered chats and reposts it so it
// stays visible. An explicit repost of a quoted message is also supported.
type Service struct {
	conn   deps.Connector
	scopes deps.ScopedToggleRepository
	logger zerolog.Logger
}

// NewService creates the view-once service
func NewService(scopes deps.ScopedToggleRepository, logger zerolog.Logger) *Service {
	return &Service{
		scopes: scopes,
		logger: logger,
	}
}

// SetConnector sets the connector after construction
func (s *Service) SetConnector(conn deps.Connector) {
	s.conn = conn
}

// Enabled reports whether a chat is covered, with the same scope precedence
// as anti-delete: global, group-wide, private-wide, per-chat.
func (s *Service) Enabled(ctx context.Context, chatID string) (bool, error) {
	global, groupOnly, privateOnly, err := s.scopes.GetScopes(ctx)
	if err != nil {
		return false, fmt.Errorf("view-once scopes: %w", err)
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

// Capture reposts view-once media from an inbound message when the chat is
// covered. A scope read failure means no repost; a download or send failure
// is reported into the chat so the sender knows the capture was lost.
func (s *Service) Capture(ctx context.Context, ev *entities.MessageEvent) error {
	if ev.FromMe || !ev.ViewOnce {
		return nil
	}

	enabled, err := s.Enabled(ctx, ev.ChatID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chat", ev.ChatID).Msg("view-once scope read failed, skipping")
		return nil
	}
	if !enabled {
		return nil
	}

	if err := s.repost(ctx, ev.ChatID, ev.MessageID); err != nil {
		s.logger.Error().Err(err).
			Str("chat", ev.ChatID).
			Str("message", ev.MessageID).
			Msg("view-once repost failed")
		s.notifyFailure(ctx, ev.ChatID)
		return err
	}
	return nil
}

// RepostQuoted reposts the view-once message a command reply points at.
// Replying to something that is not view-once yields ErrMediaUnavailable.
func (s *Service) RepostQuoted(ctx context.Context, ev *entities.MessageEvent) error {
	if ev.QuotedID == "" || !ev.QuotedViewOnce {
		return guarderrors.ErrMediaUnavailable
	}
	if err := s.repost(ctx, ev.ChatID, ev.QuotedID); err != nil {
		s.notifyFailure(ctx, ev.ChatID)
		return err
	}
	return nil
}

func (s *Service) repost(ctx context.Context, chatID, messageID string) error {
	payload, kind, err := s.conn.DownloadMedia(ctx, chatID, messageID)
	if err != nil {
		return fmt.Errorf("download view-once media: %w", err)
	}

	switch kind {
	case entities.MediaImage:
		err = s.conn.SendImage(ctx, chatID, payload, repostCaption)
	case entities.MediaVideo:
		err = s.conn.SendVideo(ctx, chatID, payload, repostCaption)
	default:
		return guarderrors.ErrMediaUnavailable
	}
	if err != nil {
		return fmt.Errorf("send view-once repost: %w", err)
	}

	s.logger.Info().
		Str("chat", chatID).
		Str("message", messageID).
		Str("kind", string(kind)).
		Msg("reposted view-once media")
	return nil
}

func (s *Service) notifyFailure(ctx context.Context, chatID string) {
	if err := s.conn.SendText(ctx, chatID, "⚠️ Could not recover the view-once media."); err != nil {
		s.logger.Warn().Err(err).Str("chat", chatID).Msg("failed to report view-once failure")
	}
}
