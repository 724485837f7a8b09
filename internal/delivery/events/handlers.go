package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
)

func (r *Router) buildDispatchTable() map[string]descriptor {
	return map[string]descriptor{
		"ping": {TierAll, r.cmdPing},
		"menu": {TierAll, r.cmdMenu},
		"++":   {TierAll, r.cmdRepostQuoted},

		"rules":        {TierAll, r.cmdRules},
		"setrules":     {TierAdmin, r.cmdSetRules},
		"setwelcome":   {TierAdmin, r.cmdSetWelcome},
		"startwelcome": {TierAdmin, r.toggleSetting("welcome_enabled", true, "✅ Welcome messages enabled.")},
		"stopwelcome":  {TierAdmin, r.toggleSetting("welcome_enabled", false, "✅ Welcome messages disabled.")},
		"startgoodbye": {TierAdmin, r.toggleSetting("goodbye_enabled", true, "✅ Goodbye messages enabled.")},
		"stopgoodbye":  {TierAdmin, r.toggleSetting("goodbye_enabled", false, "✅ Goodbye messages disabled.")},
		"setlanguage":  {TierAdmin, r.cmdSetLanguage},

		"enable":  {TierOwner, r.toggleSetting("bot_enabled", true, "✅ Bot enabled in this chat.")},
		"disable": {TierOwner, r.toggleSetting("bot_enabled", false, "💤 Bot disabled in this chat.")},
		"prefix":  {TierOwner, r.cmdPrefix},

		"antilink":  {TierAdmin, r.policyCommand(moderation.PolicyAntiLink, "antilink_enabled")},
		"antisales": {TierAdmin, r.policyCommand(moderation.PolicyAntiSales, "antisales_enabled")},

		"antidelete": {TierOwner, r.scopedToggle(r.antiDelete, "Anti-delete")},
		"viewonce":   {TierOwner, r.scopedToggle(r.viewOnce, "View-once capture")},

		"warn":      {TierAdmin, r.cmdWarn},
		"listwarn":  {TierAdmin, r.cmdListWarn},
		"resetwarn": {TierAdmin, r.cmdResetWarn},

		"promote": {TierAdmin, r.participantCommand("promote")},
		"demote":  {TierAdmin, r.participantCommand("demote")},
		"kick":    {TierAdmin, r.participantCommand("kick")},
		"mute":    {TierAdmin, r.cmdMute},
		"unmute":  {TierAdmin, r.cmdUnmute},
		"tagall":  {TierAdmin, r.cmdTagAll},

		"announce":       {TierAdmin, r.cmdAnnounce},
		"stopannounce":   {TierAdmin, r.cmdStopAnnounce},
		"schedule":       {TierAdmin, r.cmdSchedule},
		"remind":         {TierAdmin, r.cmdRemind},
		"listschedule":   {TierAdmin, r.cmdListSchedule},
		"cancelschedule": {TierAdmin, r.cmdCancelSchedule},
		"cancelreminder": {TierAdmin, r.cmdCancelReminder},

		"poll":    {TierAll, r.cmdPoll},
		"vote":    {TierAll, r.cmdVote},
		"endpoll": {TierAll, r.cmdEndPoll},

		"addcommand": {TierOwner, r.cmdAddCommand},
		"delcommand": {TierOwner, r.cmdDelCommand},
	}
}

func (r *Router) cmdPing(ctx context.Context, req *request) error {
	return r.conn.SendText(ctx, req.ev.ChatID, "🏓 Pong!")
}

func (r *Router) cmdMenu(ctx context.Context, req *request) error {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("📋 Commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "• %s%s\n", req.prefix, name)
	}
	return r.conn.SendText(ctx, req.ev.ChatID, b.String())
}

func (r *Router) cmdRepostQuoted(ctx context.Context, req *request) error {
	err := r.viewOnce.RepostQuoted(ctx, req.ev)
	if errors.Is(err, guarderrors.ErrMediaUnavailable) {
		r.reply(ctx, req.ev.ChatID, "⚠️ Reply to a view-once message with ++ to repost it.")
		return nil
	}
	return err
}

func (r *Router) cmdRules(ctx context.Context, req *request) error {
	settings, err := r.settings.Get(ctx, req.ev.ChatID)
	if err != nil || strings.TrimSpace(settings.Rules) == "" {
		r.reply(ctx, req.ev.ChatID, "📜 No rules have been set for this chat.")
		return nil
	}
	return r.conn.SendText(ctx, req.ev.ChatID, "📜 Rules:\n"+settings.Rules)
}

func (r *Router) cmdSetRules(ctx context.Context, req *request) error {
	text := req.raw()
	if text == "" {
		r.reply(ctx, req.ev.ChatID, usage(req, "setrules <text>"))
		return nil
	}
	if err := r.settings.Patch(ctx, req.ev.ChatID, map[string]any{"rules": text}); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "✅ Rules updated.")
	return nil
}

func (r *Router) cmdSetWelcome(ctx context.Context, req *request) error {
	text := req.raw()
	if text == "" {
		r.reply(ctx, req.ev.ChatID, usage(req, "setwelcome <text> (use %user% and %group%)"))
		return nil
	}
	fields := map[string]any{"welcome_text": text, "welcome_enabled": true}
	if err := r.settings.Patch(ctx, req.ev.ChatID, fields); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "✅ Welcome message updated.")
	return nil
}

func (r *Router) cmdSetLanguage(ctx context.Context, req *request) error {
	if len(req.args) != 1 {
		r.reply(ctx, req.ev.ChatID, usage(req, "setlanguage <code>"))
		return nil
	}
	if err := r.settings.Patch(ctx, req.ev.ChatID, map[string]any{"language": strings.ToLower(req.args[0])}); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "✅ Language updated.")
	return nil
}

// toggleSetting builds a handler flipping one settings column
func (r *Router) toggleSetting(column string, value bool, confirmation string) func(ctx context.Context, req *request) error {
	return func(ctx context.Context, req *request) error {
		if err := r.settings.Patch(ctx, req.ev.ChatID, map[string]any{column: value}); err != nil {
			return err
		}
		r.reply(ctx, req.ev.ChatID, confirmation)
		return nil
	}
}

func (r *Router) cmdPrefix(ctx context.Context, req *request) error {
	if len(req.args) != 1 || req.args[0] == "" {
		r.reply(ctx, req.ev.ChatID, usage(req, "prefix <new-prefix>"))
		return nil
	}
	if err := r.settings.SetPrefix(ctx, req.args[0]); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ Prefix changed to %s", req.args[0]))
	return nil
}

// policyCommand builds the antilink/antisales handler: on, off, permit,
// nopermit and permitnot subcommands
func (r *Router) policyCommand(policy, column string) func(ctx context.Context, req *request) error {
	return func(ctx context.Context, req *request) error {
		if len(req.args) == 0 {
			r.reply(ctx, req.ev.ChatID, usage(req, policy+" <on|off|permit|nopermit|permitnot>"))
			return nil
		}

		switch strings.ToLower(req.args[0]) {
		case "on":
			if err := r.settings.Patch(ctx, req.ev.ChatID, map[string]any{column: true}); err != nil {
				return err
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ %s is now on.", policy))
		case "off":
			if err := r.settings.Patch(ctx, req.ev.ChatID, map[string]any{column: false}); err != nil {
				return err
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ %s is now off.", policy))
		case "permit":
			users := r.targets(req)
			if len(users) == 0 {
				r.reply(ctx, req.ev.ChatID, usage(req, policy+" permit @user"))
				return nil
			}
			for _, user := range users {
				if err := r.perms.Permit(ctx, req.ev.ChatID, user, policy); err != nil {
					return err
				}
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ %d user(s) permitted for %s.", len(users), policy))
		case "nopermit":
			users := r.targets(req)
			if len(users) == 0 {
				r.reply(ctx, req.ev.ChatID, usage(req, policy+" nopermit @user"))
				return nil
			}
			for _, user := range users {
				if err := r.perms.Revoke(ctx, req.ev.ChatID, user, policy); err != nil {
					return err
				}
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ Permit removed for %d user(s).", len(users)))
		case "permitnot":
			if err := r.perms.RevokeAll(ctx, req.ev.ChatID, policy); err != nil {
				return err
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ Permit list for %s cleared.", policy))
		default:
			r.reply(ctx, req.ev.ChatID, usage(req, policy+" <on|off|permit|nopermit|permitnot>"))
		}
		return nil
	}
}

// scoped is the shared surface of the anti-delete and view-once services
type scoped interface {
	SetScope(ctx context.Context, scope string, enabled bool) error
	SetChat(ctx context.Context, chatID string, enabled bool) error
}

// scopedToggle builds the antidelete/viewonce handler: per-chat on/off plus
// the global, group and private wide scopes
func (r *Router) scopedToggle(svc scoped, label string) func(ctx context.Context, req *request) error {
	return func(ctx context.Context, req *request) error {
		switch {
		case len(req.args) == 1 && isToggle(req.args[0]):
			if err := svc.SetChat(ctx, req.ev.ChatID, req.args[0] == "on"); err != nil {
				return err
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ %s is now %s in this chat.", label, req.args[0]))
			return nil
		case len(req.args) == 2 && isScope(req.args[0]) && isToggle(req.args[1]):
			if err := svc.SetScope(ctx, req.args[0], req.args[1] == "on"); err != nil {
				return err
			}
			r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ %s %s scope is now %s.", label, req.args[0], req.args[1]))
			return nil
		default:
			r.reply(ctx, req.ev.ChatID, usage(req, strings.ToLower(req.name)+" <on|off> | <global|group|private> <on|off>"))
			return nil
		}
	}
}

func (r *Router) cmdWarn(ctx context.Context, req *request) error {
	users := r.targets(req)
	if len(users) == 0 {
		r.reply(ctx, req.ev.ChatID, usage(req, "warn @user [reason]"))
		return nil
	}

	reason := moderation.ReasonDefault
	if len(req.args) > len(req.ev.Mentions) {
		last := strings.ToLower(req.args[len(req.args)-1])
		if last == moderation.ReasonLinks || last == moderation.ReasonSales {
			reason = last
		}
	}

	for _, user := range users {
		if err := r.moderation.IssueWarning(ctx, req.ev.ChatID, user, reason); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) cmdListWarn(ctx context.Context, req *request) error {
	report, err := r.moderation.List(ctx, req.ev.ChatID)
	if err != nil {
		return err
	}
	return r.conn.SendText(ctx, req.ev.ChatID, report)
}

func (r *Router) cmdResetWarn(ctx context.Context, req *request) error {
	users := r.targets(req)
	if len(users) == 0 {
		r.reply(ctx, req.ev.ChatID, usage(req, "resetwarn @user"))
		return nil
	}
	for _, user := range users {
		if err := r.moderation.Reset(ctx, req.ev.ChatID, user); err != nil {
			return err
		}
	}
	return nil
}

// participantCommand builds the promote/demote/kick handlers
func (r *Router) participantCommand(action string) func(ctx context.Context, req *request) error {
	return func(ctx context.Context, req *request) error {
		if !req.ev.IsGroup() {
			r.reply(ctx, req.ev.ChatID, noticeGroup)
			return nil
		}
		users := r.targets(req)
		if len(users) == 0 {
			r.reply(ctx, req.ev.ChatID, usage(req, action+" @user"))
			return nil
		}

		var err error
		switch action {
		case "promote":
			err = r.conn.PromoteParticipants(ctx, req.ev.ChatID, users)
		case "demote":
			err = r.conn.DemoteParticipants(ctx, req.ev.ChatID, users)
		case "kick":
			err = r.conn.RemoveParticipants(ctx, req.ev.ChatID, users)
		}
		if err != nil {
			return err
		}

		r.groups.Invalidate(req.ev.ChatID)
		r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ Done: %s %d user(s).", action, len(users)))
		return nil
	}
}

func (r *Router) cmdMute(ctx context.Context, req *request) error {
	if !req.ev.IsGroup() {
		r.reply(ctx, req.ev.ChatID, noticeGroup)
		return nil
	}
	if err := r.conn.SetAnnouncementMode(ctx, req.ev.ChatID, true); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "🔇 Group muted: only admins can post.")
	return nil
}

func (r *Router) cmdUnmute(ctx context.Context, req *request) error {
	if !req.ev.IsGroup() {
		r.reply(ctx, req.ev.ChatID, noticeGroup)
		return nil
	}
	if err := r.conn.SetAnnouncementMode(ctx, req.ev.ChatID, false); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "🔊 Group unmuted: everyone can post.")
	return nil
}

func (r *Router) cmdTagAll(ctx context.Context, req *request) error {
	if !req.ev.IsGroup() {
		r.reply(ctx, req.ev.ChatID, noticeGroup)
		return nil
	}
	meta, err := r.groups.Metadata(ctx, req.ev.ChatID)
	if err != nil {
		return err
	}

	mentions := make([]string, 0, len(meta.Participants))
	var b strings.Builder
	b.WriteString("📢 Attention everyone:\n")
	for _, p := range meta.Participants {
		mentions = append(mentions, p.ID)
		fmt.Fprintf(&b, "@%s ", userTag(p.ID))
	}
	if note := req.raw(); note != "" {
		b.WriteString("\n\n" + note)
	}
	return r.conn.SendTextMentions(ctx, req.ev.ChatID, b.String(), mentions)
}

func (r *Router) cmdAnnounce(ctx context.Context, req *request) error {
	if len(req.args) < 2 {
		r.reply(ctx, req.ev.ChatID, usage(req, "announce <interval> <text>, e.g. announce 30m Buy the dip"))
		return nil
	}
	interval, err := time.ParseDuration(req.args[0])
	if err != nil || interval < time.Minute {
		r.reply(ctx, req.ev.ChatID, "⚠️ Interval must be a duration of at least 1m.")
		return nil
	}

	text := strings.TrimSpace(strings.TrimPrefix(req.raw(), req.args[0]))
	r.registry.StartAnnounce(req.ev.ChatID, text, interval)
	r.reply(ctx, req.ev.ChatID, fmt.Sprintf("📣 Announcing every %s until stopped.", interval))
	return nil
}

func (r *Router) cmdStopAnnounce(ctx context.Context, req *request) error {
	if r.registry.StopAnnounce(req.ev.ChatID) {
		r.reply(ctx, req.ev.ChatID, "📣 Announcement stopped.")
	} else {
		r.reply(ctx, req.ev.ChatID, "⚠️ No announcement is running in this chat.")
	}
	return nil
}

func (r *Router) cmdSchedule(ctx context.Context, req *request) error {
	if len(req.args) < 2 {
		r.reply(ctx, req.ev.ChatID, usage(req, "schedule <delay> <text>, e.g. schedule 2h Meeting starts"))
		return nil
	}
	delay, err := time.ParseDuration(req.args[0])
	if err != nil || delay <= 0 {
		r.reply(ctx, req.ev.ChatID, "⚠️ Delay must be a positive duration like 10m or 2h.")
		return nil
	}

	text := strings.TrimSpace(strings.TrimPrefix(req.raw(), req.args[0]))
	task := &entities.ScheduledTask{
		ChatID:  req.ev.ChatID,
		Kind:    entities.TaskKindMessage,
		Payload: text,
		FireAt:  time.Now().Add(delay),
	}
	id, err := r.registry.Schedule(ctx, task)
	if err != nil {
		if errors.Is(err, guarderrors.ErrBadSchedule) {
			r.reply(ctx, req.ev.ChatID, "⚠️ That schedule is not valid.")
			return nil
		}
		return err
	}
	r.reply(ctx, req.ev.ChatID, fmt.Sprintf("⏰ Scheduled (%s), id: %s", delay, id))
	return nil
}

func (r *Router) cmdRemind(ctx context.Context, req *request) error {
	if len(req.args) < 2 {
		r.reply(ctx, req.ev.ChatID, usage(req, "remind <HH:MM> <text>"))
		return nil
	}

	text := strings.TrimSpace(strings.TrimPrefix(req.raw(), req.args[0]))
	if _, err := r.registry.Remind(ctx, req.ev.ChatID, req.args[0], text); err != nil {
		if errors.Is(err, guarderrors.ErrBadTimeOfDay) {
			r.reply(ctx, req.ev.ChatID, "⚠️ Time must be HH:MM on a 24-hour clock.")
			return nil
		}
		return err
	}
	r.reply(ctx, req.ev.ChatID, fmt.Sprintf("⏰ Daily reminder set for %s.", req.args[0]))
	return nil
}

func (r *Router) cmdListSchedule(ctx context.Context, req *request) error {
	tasks, err := r.registry.List(ctx, req.ev.ChatID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		r.reply(ctx, req.ev.ChatID, "⏰ Nothing is scheduled in this chat.")
		return nil
	}

	var b strings.Builder
	b.WriteString("⏰ Scheduled:\n")
	for _, t := range tasks {
		if t.Recurring {
			fmt.Fprintf(&b, "• [%s] %s daily at %02d:%02d — %s\n", t.ID, t.Kind, t.FireAt.Hour(), t.FireAt.Minute(), t.Payload)
		} else {
			fmt.Fprintf(&b, "• [%s] %s at %s — %s\n", t.ID, t.Kind, t.FireAt.Format("2006-01-02 15:04"), t.Payload)
		}
	}
	return r.conn.SendText(ctx, req.ev.ChatID, b.String())
}

func (r *Router) cmdCancelSchedule(ctx context.Context, req *request) error {
	if len(req.args) != 1 {
		r.reply(ctx, req.ev.ChatID, usage(req, "cancelschedule <id>"))
		return nil
	}
	if err := r.registry.Cancel(ctx, req.args[0]); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "✅ Schedule cancelled.")
	return nil
}

func (r *Router) cmdCancelReminder(ctx context.Context, req *request) error {
	if len(req.args) != 1 {
		r.reply(ctx, req.ev.ChatID, usage(req, "cancelreminder <HH:MM>"))
		return nil
	}
	removed, err := r.registry.CancelReminder(ctx, req.ev.ChatID, req.args[0])
	if err != nil {
		if errors.Is(err, guarderrors.ErrBadTimeOfDay) {
			r.reply(ctx, req.ev.ChatID, "⚠️ Time must be HH:MM on a 24-hour clock.")
			return nil
		}
		return err
	}
	if removed {
		r.reply(ctx, req.ev.ChatID, "✅ Reminder removed.")
	} else {
		r.reply(ctx, req.ev.ChatID, "⚠️ No reminder at that time.")
	}
	return nil
}

func (r *Router) cmdPoll(ctx context.Context, req *request) error {
	parts := strings.Split(req.raw(), "|")
	if len(parts) < 3 {
		r.reply(ctx, req.ev.ChatID, usage(req, "poll <question> | <option> | <option> …"))
		return nil
	}
	question := strings.TrimSpace(parts[0])
	options := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if opt := strings.TrimSpace(p); opt != "" {
			options = append(options, opt)
		}
	}

	err := r.polls.Create(ctx, req.ev.ChatID, req.ev.Sender, question, options)
	if err != nil {
		if errors.Is(err, guarderrors.ErrPollAlreadyRunning) {
			r.reply(ctx, req.ev.ChatID, "⚠️ A poll is already running in this chat.")
			return nil
		}
		if errors.Is(err, guarderrors.ErrUnknownOption) {
			r.reply(ctx, req.ev.ChatID, usage(req, "poll <question> | <option> | <option> …"))
			return nil
		}
		return err
	}

	status, err := r.polls.Status(ctx, req.ev.ChatID)
	if err != nil {
		return err
	}
	return r.conn.SendText(ctx, req.ev.ChatID, status+fmt.Sprintf("\nVote with %svote <number>", req.prefix))
}

func (r *Router) cmdVote(ctx context.Context, req *request) error {
	if len(req.args) == 0 {
		r.reply(ctx, req.ev.ChatID, usage(req, "vote <number or option>"))
		return nil
	}

	err := r.polls.Vote(ctx, req.ev.ChatID, strings.Join(req.args, " "))
	switch {
	case err == nil:
		return r.conn.React(ctx, req.ev.ChatID, req.ev.MessageID, "✅")
	case errors.Is(err, guarderrors.ErrPollNotFound):
		r.reply(ctx, req.ev.ChatID, "⚠️ No poll is running in this chat.")
		return nil
	case errors.Is(err, guarderrors.ErrPollExpired):
		// resolved and announced; the vote was not counted
		return nil
	case errors.Is(err, guarderrors.ErrUnknownOption):
		r.reply(ctx, req.ev.ChatID, usage(req, "vote <number or option>"))
		return nil
	}
	return err
}

func (r *Router) cmdEndPoll(ctx context.Context, req *request) error {
	err := r.polls.End(ctx, req.ev.ChatID, req.ev.Sender)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, guarderrors.ErrPollNotFound):
		r.reply(ctx, req.ev.ChatID, "⚠️ No poll is running in this chat.")
		return nil
	case errors.Is(err, guarderrors.ErrNotAuthorized):
		r.reply(ctx, req.ev.ChatID, "🚫 Only the poll creator can end it.")
		return nil
	}
	return err
}

func (r *Router) cmdAddCommand(ctx context.Context, req *request) error {
	if len(req.args) < 2 {
		r.reply(ctx, req.ev.ChatID, usage(req, "addcommand <name> <response>"))
		return nil
	}
	name := strings.ToLower(req.args[0])
	if _, reserved := r.commands[name]; reserved {
		r.reply(ctx, req.ev.ChatID, "⚠️ That name is a built-in command.")
		return nil
	}

	response := strings.TrimSpace(strings.TrimPrefix(req.raw(), req.args[0]))
	cmd := &entities.CustomCommand{Name: name, Response: response, Tier: TierAll}
	if err := r.customCmds.Upsert(ctx, cmd); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, fmt.Sprintf("✅ Command %s%s registered.", req.prefix, name))
	return nil
}

func (r *Router) cmdDelCommand(ctx context.Context, req *request) error {
	if len(req.args) != 1 {
		r.reply(ctx, req.ev.ChatID, usage(req, "delcommand <name>"))
		return nil
	}
	if err := r.customCmds.Delete(ctx, strings.ToLower(req.args[0])); err != nil {
		return err
	}
	r.reply(ctx, req.ev.ChatID, "✅ Command removed.")
	return nil
}

// targets resolves the users a command acts on: explicit mentions first,
// then bare @name arguments
func (r *Router) targets(req *request) []string {
	if len(req.ev.Mentions) > 0 {
		return req.ev.Mentions
	}
	var users []string
	for _, arg := range req.args {
		if strings.HasPrefix(arg, "@") {
			users = append(users, strings.TrimPrefix(arg, "@"))
		}
	}
	return users
}

func usage(req *request, pattern string) string {
	return "Usage: " + req.prefix + pattern
}

func isToggle(s string) bool {
	return s == "on" || s == "off"
}

func isScope(s string) bool {
	return s == "global" || s == "group" || s == "private"
}

func userTag(user string) string {
	if i := strings.IndexByte(user, '@'); i >= 0 {
		return user[:i]
	}
	return user
}
