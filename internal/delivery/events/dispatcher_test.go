package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps/mocks"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/greeting"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
)

func newDispatcherFixture(t *testing.T) (*Dispatcher, *routerFixture, *mocks.ScopedToggleStore) {
	t.Helper()

	f := newRouterFixture(t)
	nop := zerolog.Nop()

	adScopes := mocks.NewScopedToggleStore()
	antiDelete := antidelete.NewService(adScopes, mocks.NewMessageCacheStore(), nop)
	antiDelete.SetConnector(f.conn)

	viewOnce := viewonce.NewService(mocks.NewScopedToggleStore(), nop)
	viewOnce.SetConnector(f.conn)

	groups := groupinfo.NewService(nop)
	groups.SetConnector(f.conn)

	mod := moderation.NewEngine(
		&config.WarningConfig{Links: 3, Sales: 2, Default: 3},
		&config.BotConfig{OwnerID: testOwner, DefaultPrefix: "."},
		f.settings, f.warnings, f.perms, groups, nop,
	)
	mod.SetConnector(f.conn)

	greetings := greeting.NewService(f.settings, groups, nop)
	greetings.SetConnector(f.conn)

	d := NewDispatcher(f.router, mod, antiDelete, viewOnce, greetings, nop)
	d.Start()
	t.Cleanup(d.Close)
	return d, f, adScopes
}

func TestDispatcher_ProcessesMessagesInOrder(t *testing.T) {
	d, f, scopes := newDispatcherFixture(t)
	scopes.Global = true

	d.HandleMessage(&entities.MessageEvent{
		ChatID:    testChat,
		MessageID: "m1",
		Sender:    testUser,
		Text:      "remember this",
	})
	// the deletion that follows must observe the capture above
	d.HandleDeletion(&entities.DeletionEvent{
		ChatID:    testChat,
		MessageID: "m1",
		Actor:     testUser,
	})

	require.Eventually(t, func() bool {
		return len(f.conn.SentTexts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.conn.SentTexts()[0].Text, "remember this")
}

func TestDispatcher_RoutesCommands(t *testing.T) {
	d, f, _ := newDispatcherFixture(t)

	d.HandleMessage(&entities.MessageEvent{
		ChatID:    testChat,
		MessageID: "m1",
		Sender:    testUser,
		Text:      ".ping",
	})

	require.Eventually(t, func() bool {
		return len(f.conn.SentTexts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.conn.SentTexts()[0].Text, "Pong")
}

func TestDispatcher_HandlesMembership(t *testing.T) {
	d, f, _ := newDispatcherFixture(t)

	require.NoError(t, f.settings.Upsert(context.Background(), &entities.GroupSettings{
		ChatID:         testChat,
		BotEnabled:     true,
		WelcomeEnabled: true,
		WelcomeText:    "Welcome %user%!",
	}))

	d.HandleMembership(&entities.MembershipEvent{
		ChatID: testChat,
		Users:  []string{"99@s.whatsapp.net"},
		Action: entities.MembershipJoin,
	})

	require.Eventually(t, func() bool {
		return len(f.conn.SentTexts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.conn.SentTexts()[0].Text, "Welcome 99")
}

func TestDispatcher_CloseDrains(t *testing.T) {
	d, f, _ := newDispatcherFixture(t)

	for i := 0; i < 5; i++ {
		d.HandleMessage(&entities.MessageEvent{
			ChatID:    testChat,
			MessageID: "m1",
			Sender:    testUser,
			Text:      ".ping",
		})
	}
	d.Close()

	assert.Len(t, f.conn.SentTexts(), 5, "queued events are processed before Close returns")

	// events after Close are dropped, not a panic
	d.HandleMessage(&entities.MessageEvent{ChatID: testChat, Text: ".ping"})
	assert.Len(t, f.conn.SentTexts(), 5)
}
