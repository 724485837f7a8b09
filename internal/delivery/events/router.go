// Package events receives connector events and routes commands
package events

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/polls"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/schedule"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
)

// Authorization tiers for command descriptors
const (
	TierAll   = "all"
	TierAdmin = "admin"
	TierOwner = "owner"
)

// Fixed denial texts. One per tier so rejections leak no detail about why.
const (
	denialAdmin    = "🚫 This command is for group admins only."
	denialOwner    = "🚫 This command is for the bot owner only."
	noticeNotFound = "❓ Command not found."
	noticeGroup    = "🚫 This command only works in groups."
	noticeFailed   = "⚠️ Something went wrong, try again later."
)

// request carries one parsed command through its handler
type request struct {
	ev     *entities.MessageEvent
	prefix string
	name   string
	args   []string
}

// raw returns the argument text with original casing and spacing
func (r *request) raw() string {
	body := strings.TrimSpace(r.ev.Text)
	body = body[len(r.prefix):]
	fields := strings.SplitN(strings.TrimSpace(body), " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}

// descriptor binds a command name to its authorization tier and handler
type descriptor struct {
	tier    string
	handler func(ctx context.Context, req *request) error
}

// Router parses the prefix grammar out of inbound text, authorizes the
// caller and dispatches to a built-in or custom command
type Router struct {
	cfg        *config.BotConfig
	conn       deps.Connector
	settings   deps.SettingsRepository
	perms      deps.PermissionRepository
	customCmds deps.CustomCommandRepository
	moderation *moderation.Engine
	antiDelete *antidelete.Service
	viewOnce   *viewonce.Service
	registry   *schedule.Registry
	polls      *polls.Service
	groups     *groupinfo.Service
	logger     zerolog.Logger
	commands   map[string]descriptor
}

// NewRouter builds the router and its dispatch table
func NewRouter(
	cfg *config.BotConfig,
	settings deps.SettingsRepository,
	perms deps.PermissionRepository,
	customCmds deps.CustomCommandRepository,
	mod *moderation.Engine,
	antiDelete *antidelete.Service,
	viewOnce *viewonce.Service,
	registry *schedule.Registry,
	pollSvc *polls.Service,
	groups *groupinfo.Service,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		cfg:        cfg,
		settings:   settings,
		perms:      perms,
		customCmds: customCmds,
		moderation: mod,
		antiDelete: antiDelete,
		viewOnce:   viewOnce,
		registry:   registry,
		polls:      pollSvc,
		groups:     groups,
		logger:     logger,
	}
	r.commands = r.buildDispatchTable()
	return r
}

// SetConnector sets the connector after construction
func (r *Router) SetConnector(conn deps.Connector) {
	r.conn = conn
}

// Route runs the command pipeline for one inbound message. Non-command text
// and the bot's own messages pass through untouched.
func (r *Router) Route(ctx context.Context, ev *entities.MessageEvent) {
	if ev.FromMe || !ev.HasText() {
		return
	}

	prefix := r.prefix(ctx)
	text := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(text, prefix) {
		return
	}

	fields := strings.Fields(text[len(prefix):])
	if len(fields) == 0 {
		return
	}

	req := &request{
		ev:     ev,
		prefix: prefix,
		name:   strings.ToLower(fields[0]),
		args:   fields[1:],
	}

	// disabled chats stay silent so a muted bot cannot be made to spam
	if !r.chatEnabled(ctx, ev.ChatID) && req.name != "enable" && req.name != "disable" {
		r.logger.Debug().
			Str("command", req.name).
			Str("chat", ev.ChatID).
			Msg("command ignored, bot disabled in chat")
		return
	}

	desc, ok := r.commands[req.name]
	if !ok {
		r.routeCustom(ctx, req)
		return
	}

	if !r.authorize(ctx, req, desc.tier) {
		return
	}

	if err := desc.handler(ctx, req); err != nil {
		r.logger.Error().Err(err).
			Str("command", req.name).
			Str("chat", ev.ChatID).
			Str("sender", ev.Sender).
			Msg("command failed")
		r.reply(ctx, ev.ChatID, noticeFailed)
	}
}

// prefix reads the live command prefix, falling back to the configured
// default when none has been stored yet
func (r *Router) prefix(ctx context.Context) string {
	prefix, err := r.settings.GetPrefix(ctx)
	if err != nil {
		if !errors.Is(err, guarderrors.ErrSettingsNotFound) {
			r.logger.Warn().Err(err).Msg("prefix read failed, using default")
		}
		return r.cfg.DefaultPrefix
	}
	return prefix
}

// chatEnabled reports whether the bot acts in a chat. A chat without a
// settings row counts as enabled; an unreadable row counts as disabled.
func (r *Router) chatEnabled(ctx context.Context, chatID string) bool {
	settings, err := r.settings.Get(ctx, chatID)
	if err != nil {
		return errors.Is(err, guarderrors.ErrSettingsNotFound)
	}
	return settings.BotEnabled
}

// authorize checks the caller against a tier and sends the fixed denial on
// rejection. Admin checks need group metadata; a metadata failure after
// retries reads as not-admin.
func (r *Router) authorize(ctx context.Context, req *request, tier string) bool {
	switch tier {
	case TierAll:
		return true
	case TierOwner:
		if req.ev.Sender == r.cfg.OwnerID {
			return true
		}
		r.reply(ctx, req.ev.ChatID, denialOwner)
		return false
	case TierAdmin:
		if req.ev.Sender == r.cfg.OwnerID {
			return true
		}
		if !req.ev.IsGroup() {
			r.reply(ctx, req.ev.ChatID, noticeGroup)
			return false
		}
		if r.groups.IsAdmin(ctx, req.ev.ChatID, req.ev.Sender) {
			return true
		}
		r.reply(ctx, req.ev.ChatID, denialAdmin)
		return false
	}
	return false
}

// routeCustom answers unknown commands from the custom-command store. This
// is the only path that reports "command not found".
func (r *Router) routeCustom(ctx context.Context, req *request) {
	cmd, err := r.customCmds.Get(ctx, req.name)
	if err != nil {
		if errors.Is(err, guarderrors.ErrCommandNotFound) {
			r.reply(ctx, req.ev.ChatID, noticeNotFound)
			return
		}
		r.logger.Error().Err(err).Str("command", req.name).Msg("custom command lookup failed")
		return
	}

	tier := cmd.Tier
	if tier == "" {
		tier = TierAll
	}
	if !r.authorize(ctx, req, tier) {
		return
	}
	r.reply(ctx, req.ev.ChatID, cmd.Response)
}

func (r *Router) reply(ctx context.Context, chatID, text string) {
	if err := r.conn.SendText(ctx, chatID, text); err != nil {
		r.logger.Warn().Err(err).Str("chat", chatID).Msg("reply failed")
	}
}
