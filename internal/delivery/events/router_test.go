package events

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps/mocks"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/polls"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/schedule"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
)

const (
	testChat  = "12345@g.us"
	testUser  = "42@s.whatsapp.net"
	testAdmin = "7@s.whatsapp.net"
	testOwner = "owner@s.whatsapp.net"
)

type routerFixture struct {
	router   *Router
	conn     *mocks.Connector
	settings *mocks.SettingsStore
	perms    *mocks.PermissionStore
	commands *mocks.CommandStore
	warnings *mocks.WarningStore
	schedule *mocks.ScheduleStore
	registry *schedule.Registry
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	conn := mocks.NewConnector()
	conn.Meta[testChat] = &entities.GroupMetadata{
		ChatID:  testChat,
		Subject: "Test Group",
		Participants: []entities.Participant{
			{ID: testAdmin, IsAdmin: true},
			{ID: testUser},
		},
	}

	settings := mocks.NewSettingsStore()
	warnings := mocks.NewWarningStore()
	perms := mocks.NewPermissionStore()
	commands := mocks.NewCommandStore()
	scheduleStore := mocks.NewScheduleStore()
	nop := zerolog.Nop()

	botCfg := &config.BotConfig{OwnerID: testOwner, DefaultPrefix: "."}
	warnCfg := &config.WarningConfig{Links: 3, Sales: 2, Default: 3}

	groups := groupinfo.NewService(nop)
	groups.SetConnector(conn)

	mod := moderation.NewEngine(warnCfg, botCfg, settings, warnings, perms, groups, nop)
	mod.SetConnector(conn)

	antiDelete := antidelete.NewService(mocks.NewScopedToggleStore(), mocks.NewMessageCacheStore(), nop)
	antiDelete.SetConnector(conn)

	viewOnce := viewonce.NewService(mocks.NewScopedToggleStore(), nop)
	viewOnce.SetConnector(conn)

	registry := schedule.NewRegistry(scheduleStore, nop)
	registry.SetConnector(conn)
	t.Cleanup(registry.Shutdown)

	pollSvc := polls.NewService(mocks.NewPollStore(), testOwner, nop)
	pollSvc.SetConnector(conn)

	router := NewRouter(botCfg, settings, perms, commands, mod, antiDelete, viewOnce, registry, pollSvc, groups, nop)
	router.SetConnector(conn)

	return &routerFixture{
		router:   router,
		conn:     conn,
		settings: settings,
		perms:    perms,
		commands: commands,
		warnings: warnings,
		schedule: scheduleStore,
		registry: registry,
	}
}

func (f *routerFixture) send(sender, text string) {
	f.router.Route(context.Background(), &entities.MessageEvent{
		ChatID:    testChat,
		MessageID: "m1",
		Sender:    sender,
		Text:      text,
	})
}

func (f *routerFixture) lastReply(t *testing.T) string {
	t.Helper()
	texts := f.conn.SentTexts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1].Text
}

func TestRouter_IgnoresNonCommands(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, "just chatting")
	f.send(testUser, "")
	assert.Empty(t, f.conn.SentTexts())
}

func TestRouter_IgnoresOwnMessages(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Route(context.Background(), &entities.MessageEvent{
		ChatID: testChat,
		Sender: testUser,
		Text:   ".ping",
		FromMe: true,
	})
	assert.Empty(t, f.conn.SentTexts())
}

func TestRouter_Ping(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".ping")
	assert.Contains(t, f.lastReply(t), "Pong")
}

func TestRouter_CommandNameIsCaseInsensitive(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".PING")
	assert.Contains(t, f.lastReply(t), "Pong")
}

func TestRouter_PrefixReadFresh(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.send(testUser, "!ping")
	assert.Empty(t, f.conn.SentTexts(), "wrong prefix is ignored")

	require.NoError(t, f.settings.SetPrefix(ctx, "!"))
	f.send(testUser, "!ping")
	assert.Contains(t, f.lastReply(t), "Pong")

	f.send(testUser, ".ping")
	assert.Contains(t, f.lastReply(t), "Pong", "old prefix no longer routes")
	assert.Len(t, f.conn.SentTexts(), 2)
}

func TestRouter_AdminTier(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".antilink on")
	assert.Equal(t, denialAdmin, f.lastReply(t))

	f.send(testAdmin, ".antilink on")
	assert.Contains(t, f.lastReply(t), "antilink is now on")

	settings, err := f.settings.Get(context.Background(), testChat)
	require.NoError(t, err)
	assert.True(t, settings.AntiLinkEnabled)
}

func TestRouter_OwnerTier(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testAdmin, ".prefix !")
	assert.Equal(t, denialOwner, f.lastReply(t))

	f.send(testOwner, ".prefix !")
	assert.Contains(t, f.lastReply(t), "Prefix changed")
}

func TestRouter_OwnerPassesAdminTier(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testOwner, ".antilink on")
	assert.Contains(t, f.lastReply(t), "antilink is now on")
}

func TestRouter_DisabledChatShortCircuits(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	require.NoError(t, f.settings.Upsert(ctx, &entities.GroupSettings{
		ChatID:     testChat,
		BotEnabled: false,
	}))

	// a disabled chat gets no reply at all
	f.send(testUser, ".ping")
	assert.Empty(t, f.conn.SentTexts())

	// enable stays reachable for the owner
	f.send(testOwner, ".enable")
	assert.Contains(t, f.lastReply(t), "Bot enabled")

	f.send(testUser, ".ping")
	assert.Contains(t, f.lastReply(t), "Pong")
}

func TestRouter_UnreadableSettingsDisableChat(t *testing.T) {
	f := newRouterFixture(t)
	f.settings.Err = errors.New("connection refused")

	f.send(testUser, ".ping")
	assert.Empty(t, f.conn.SentTexts())
}

func TestRouter_HandlerFailureNotifiesChat(t *testing.T) {
	f := newRouterFixture(t)
	f.schedule.Err = errors.New("connection refused")

	f.send(testAdmin, ".listschedule")
	assert.Equal(t, noticeFailed, f.lastReply(t))
}

func TestRouter_CustomCommandFallback(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	f.send(testUser, ".greet")
	assert.Equal(t, noticeNotFound, f.lastReply(t))

	require.NoError(t, f.commands.Upsert(ctx, &entities.CustomCommand{
		Name:     "greet",
		Response: "Hello from the store!",
	}))

	f.send(testUser, ".greet")
	assert.Equal(t, "Hello from the store!", f.lastReply(t))
}

func TestRouter_AddAndRemoveCustomCommand(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testOwner, ".addcommand greet Hello there")
	assert.Contains(t, f.lastReply(t), "registered")

	f.send(testUser, ".greet")
	assert.Equal(t, "Hello there", f.lastReply(t))

	f.send(testOwner, ".delcommand greet")
	f.send(testUser, ".greet")
	assert.Equal(t, noticeNotFound, f.lastReply(t))
}

func TestRouter_AddCommand_RejectsBuiltinName(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testOwner, ".addcommand ping pong override")
	assert.Contains(t, f.lastReply(t), "built-in")
}

func TestRouter_Warn(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Route(context.Background(), &entities.MessageEvent{
		ChatID:   testChat,
		Sender:   testAdmin,
		Text:     ".warn @42",
		Mentions: []string{testUser},
	})

	rec, err := f.warnings.Get(context.Background(), testChat, testUser, moderation.ReasonDefault)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}

func TestRouter_Kick(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Route(context.Background(), &entities.MessageEvent{
		ChatID:   testChat,
		Sender:   testAdmin,
		Text:     ".kick @42",
		Mentions: []string{testUser},
	})

	require.Len(t, f.conn.Removed, 1)
	assert.Equal(t, []string{testUser}, f.conn.Removed[0])
}

func TestRouter_MuteUnmute(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testAdmin, ".mute")
	assert.True(t, f.conn.Muted[testChat])

	f.send(testAdmin, ".unmute")
	assert.False(t, f.conn.Muted[testChat])
}

func TestRouter_TagAll(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testAdmin, ".tagall everyone read the pins")

	texts := f.conn.SentTexts()
	require.NotEmpty(t, texts)
	last := texts[len(texts)-1]
	assert.ElementsMatch(t, []string{testAdmin, testUser}, last.Mentions)
	assert.Contains(t, last.Text, "read the pins")
}

func TestRouter_Remind(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testAdmin, ".remind 09:30 daily standup")
	assert.Contains(t, f.lastReply(t), "09:30")

	tasks, err := f.schedule.ListByChat(context.Background(), testChat)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, entities.TaskKindReminder, tasks[0].Kind)
	assert.Equal(t, "daily standup", tasks[0].Payload)
}

func TestRouter_Remind_BadTime(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testAdmin, ".remind 25:99 nope")
	assert.Contains(t, f.lastReply(t), "24-hour clock")
}

func TestRouter_PollFlow(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".poll Best day? | Saturday | Sunday")
	assert.Contains(t, f.lastReply(t), "Best day?")

	f.send(testUser, ".vote 1")
	assert.NotEmpty(t, f.conn.Reacted, "a counted vote gets a reaction")

	f.send(testUser, ".endpoll")
	assert.Contains(t, f.lastReply(t), "Poll closed")
}

func TestRouter_SetRulesAndRules(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".rules")
	assert.Contains(t, f.lastReply(t), "No rules")

	f.send(testAdmin, ".setrules Be kind. No spam.")
	f.send(testUser, ".rules")
	assert.Contains(t, f.lastReply(t), "Be kind. No spam.")
}

func TestRouter_Menu_ListsCommands(t *testing.T) {
	f := newRouterFixture(t)

	f.send(testUser, ".menu")
	reply := f.lastReply(t)
	for _, name := range []string{".ping", ".antilink", ".poll", ".remind"} {
		assert.True(t, strings.Contains(reply, name), "menu lists %s", name)
	}
}
