// Package greeting sends welcome and goodbye messages on group membership
// changes
package greeting

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
)

var goodbyeLines = []string{
	"👋 @%s has left the group. Farewell!",
	"👋 @%s is gone. We'll miss you!",
	"👋 Goodbye @%s, take care!",
}

// Service reacts to membership events with configured greetings
type Service struct {
	conn     deps.Connector
	settings deps.SettingsRepository
	groups   *groupinfo.Service
	logger   zerolog.Logger
}

// NewService creates the greeting service
func NewService(settings deps.SettingsRepository, groups *groupinfo.Service, logger zerolog.Logger) *Service {
	return &Service{
		settings: settings,
		groups:   groups,
		logger:   logger,
	}
}

// SetConnector sets the connector after construction
func (s *Service) SetConnector(conn deps.Connector) {
	s.conn = conn
}

// HandleMembership greets joining participants and waves off leaving ones,
// per the chat's settings. A settings read failure skips the greeting.
func (s *Service) HandleMembership(ctx context.Context, ev *entities.MembershipEvent) error {
	s.groups.Invalidate(ev.ChatID)

	settings, err := s.settings.Get(ctx, ev.ChatID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chat", ev.ChatID).Msg("settings read failed, skipping greeting")
		return nil
	}

	switch ev.Action {
	case entities.MembershipJoin:
		if !settings.WelcomeEnabled {
			return nil
		}
		return s.welcome(ctx, ev, settings)
	case entities.MembershipLeave, entities.MembershipRemove:
		if !settings.GoodbyeEnabled {
			return nil
		}
		return s.goodbye(ctx, ev)
	}
	return nil
}

func (s *Service) welcome(ctx context.Context, ev *entities.MembershipEvent, settings *entities.GroupSettings) error {
	subject := ev.ChatID
	if meta, err := s.groups.Metadata(ctx, ev.ChatID); err == nil {
		subject = meta.Subject
	}

	for _, user := range ev.Users {
		text := settings.WelcomeText
		if strings.TrimSpace(text) == "" {
			text = "🎉 Welcome %user% to %group%!"
		}
		// %user% expands with its @-anchor so the mention binds in the text
		text = strings.ReplaceAll(text, "%user%", "@"+userTag(user))
		text = strings.ReplaceAll(text, "%group%", subject)

		if err := s.conn.SendTextMentions(ctx, ev.ChatID, text, []string{user}); err != nil {
			return fmt.Errorf("send welcome: %w", err)
		}
	}
	return nil
}

func (s *Service) goodbye(ctx context.Context, ev *entities.MembershipEvent) error {
	for _, user := range ev.Users {
		line := goodbyeLines[rand.Intn(len(goodbyeLines))]
		text := fmt.Sprintf(line, userTag(user))
		if err := s.conn.SendTextMentions(ctx, ev.ChatID, text, []string{user}); err != nil {
			return fmt.Errorf("send goodbye: %w", err)
		}
	}
	return nil
}

func userTag(user string) string {
	if i := strings.IndexByte(user, '@'); i >= 0 {
		return user[:i]
	}
	return user
}
