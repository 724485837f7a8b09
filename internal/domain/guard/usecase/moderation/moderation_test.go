package moderation

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps/mocks"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
)

const (
	testChat  = "12345@g.us"
	testUser  = "42@s.whatsapp.net"
	testOwner = "owner@s.whatsapp.net"
)

type engineFixture struct {
	engine   *Engine
	conn     *mocks.Connector
	settings *mocks.SettingsStore
	warnings *mocks.WarningStore
	perms    *mocks.PermissionStore
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	conn := mocks.NewConnector()
	settings := mocks.NewSettingsStore()
	warnings := mocks.NewWarningStore()
	perms := mocks.NewPermissionStore()

	groups := groupinfo.NewService(zerolog.Nop())
	groups.SetConnector(conn)

	engine := NewEngine(
		&config.WarningConfig{Links: 3, Sales: 2, Default: 3},
		&config.BotConfig{OwnerID: testOwner, DefaultPrefix: "."},
		settings, warnings, perms, groups,
		zerolog.Nop(),
	)
	engine.SetConnector(conn)

	return &engineFixture{engine: engine, conn: conn, settings: settings, warnings: warnings, perms: perms}
}

func (f *engineFixture) enablePolicies(t *testing.T, links, sales bool) {
	t.Helper()
	err := f.settings.Upsert(context.Background(), &entities.GroupSettings{
		ChatID:           testChat,
		BotEnabled:       true,
		AntiLinkEnabled:  links,
		AntiSalesEnabled: sales,
	})
	require.NoError(t, err)
}

func linkMessage(id string) *entities.MessageEvent {
	return &entities.MessageEvent{
		ChatID:    testChat,
		MessageID: id,
		Sender:    testUser,
		Text:      "join my group https://example.com/spam",
	}
}

func TestEngine_Scan_DeletesAndWarns(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)

	f.engine.Scan(context.Background(), linkMessage("m1"))

	assert.Equal(t, []string{"m1"}, f.conn.Deleted)

	rec, err := f.warnings.Get(context.Background(), testChat, testUser, ReasonLinks)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)

	texts := f.conn.SentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0].Text, "warning #1")
	assert.Equal(t, []string{testUser}, texts[0].Mentions)
}

func TestEngine_Scan_PolicyDisabled(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, false, false)

	f.engine.Scan(context.Background(), linkMessage("m1"))

	assert.Empty(t, f.conn.Deleted)
	assert.Empty(t, f.conn.SentTexts())
}

func TestEngine_Scan_SkipsPrivateChats(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)

	ev := linkMessage("m1")
	ev.ChatID = "42@s.whatsapp.net"
	f.engine.Scan(context.Background(), ev)

	assert.Empty(t, f.conn.Deleted)
}

func TestEngine_Scan_SkipsOwnMessages(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)

	ev := linkMessage("m1")
	ev.FromMe = true
	f.engine.Scan(context.Background(), ev)

	assert.Empty(t, f.conn.Deleted)
}

func TestEngine_Scan_OwnerExempt(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)

	ev := linkMessage("m1")
	ev.Sender = testOwner
	f.engine.Scan(context.Background(), ev)

	assert.Empty(t, f.conn.Deleted)
}

func TestEngine_Scan_PermittedUserExempt(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)
	require.NoError(t, f.perms.Permit(context.Background(), testChat, testUser, PolicyAntiLink))

	f.engine.Scan(context.Background(), linkMessage("m1"))

	assert.Empty(t, f.conn.Deleted)
}

func TestEngine_Scan_AdminBypass(t *testing.T) {
	f := newEngineFixture(t)
	err := f.settings.Upsert(context.Background(), &entities.GroupSettings{
		ChatID:            testChat,
		BotEnabled:        true,
		AntiLinkEnabled:   true,
		PermitAdminBypass: true,
	})
	require.NoError(t, err)

	f.conn.Meta[testChat] = &entities.GroupMetadata{
		ChatID:       testChat,
		Participants: []entities.Participant{{ID: testUser, IsAdmin: true}},
	}

	f.engine.Scan(context.Background(), linkMessage("m1"))
	assert.Empty(t, f.conn.Deleted)

	// without the bypass flag the same admin is not exempt
	f2 := newEngineFixture(t)
	f2.enablePolicies(t, true, false)
	f2.conn.Meta[testChat] = &entities.GroupMetadata{
		ChatID:       testChat,
		Participants: []entities.Participant{{ID: testUser, IsAdmin: true}},
	}
	f2.engine.Scan(context.Background(), linkMessage("m1"))
	assert.Equal(t, []string{"m1"}, f2.conn.Deleted)
}

func TestEngine_Scan_SalesBeforeLinks(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, true)

	ev := &entities.MessageEvent{
		ChatID:    testChat,
		MessageID: "m1",
		Sender:    testUser,
		Text:      "selling my account, dm https://example.com",
		Media:     entities.MediaImage,
	}
	f.engine.Scan(context.Background(), ev)

	rec, err := f.warnings.Get(context.Background(), testChat, testUser, ReasonSales)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)

	_, err = f.warnings.Get(context.Background(), testChat, testUser, ReasonLinks)
	assert.Error(t, err)
}

func TestEngine_IssueWarning_KickAtThreshold(t *testing.T) {
	f := newEngineFixture(t)
	f.enablePolicies(t, true, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonLinks))
	}

	require.Len(t, f.conn.Removed, 1)
	assert.Equal(t, []string{testUser}, f.conn.Removed[0])

	// bucket is reset after the kick
	_, err := f.warnings.Get(ctx, testChat, testUser, ReasonLinks)
	assert.Error(t, err)
}

func TestEngine_IssueWarning_SalesThresholdLower(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonSales))
	assert.Empty(t, f.conn.Removed)

	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonSales))
	assert.Len(t, f.conn.Removed, 1)
}

func TestEngine_IssueWarning_ConcurrentSingleKick(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.engine.IssueWarning(ctx, testChat, testUser, ReasonLinks)
		}()
	}
	wg.Wait()

	assert.Len(t, f.conn.Removed, 1, "exactly one kick per threshold crossing")
}

func TestEngine_IssueWarning_SeparateReasonBuckets(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonLinks))
	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonSales))

	links, err := f.warnings.Get(ctx, testChat, testUser, ReasonLinks)
	require.NoError(t, err)
	sales, err := f.warnings.Get(ctx, testChat, testUser, ReasonSales)
	require.NoError(t, err)
	assert.Equal(t, 1, links.Count)
	assert.Equal(t, 1, sales.Count)
}

func TestEngine_Reset(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonLinks))
	require.NoError(t, f.engine.Reset(ctx, testChat, testUser))

	_, err := f.warnings.Get(ctx, testChat, testUser, ReasonLinks)
	assert.Error(t, err)

	// reset of a user with no warnings still confirms
	require.NoError(t, f.engine.Reset(ctx, testChat, "other@s.whatsapp.net"))
}

func TestEngine_List(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	report, err := f.engine.List(ctx, testChat)
	require.NoError(t, err)
	assert.Contains(t, report, "No warnings")

	require.NoError(t, f.engine.IssueWarning(ctx, testChat, testUser, ReasonLinks))
	report, err = f.engine.List(ctx, testChat)
	require.NoError(t, err)
	assert.True(t, strings.Contains(report, "links"))
	assert.True(t, strings.Contains(report, "1 warning"))
}
