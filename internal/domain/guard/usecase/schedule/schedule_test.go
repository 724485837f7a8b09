package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps/mocks"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

const testChat = "12345@g.us"

func newFixture(t *testing.T) (*Registry, *mocks.Connector, *mocks.ScheduleStore) {
	t.Helper()
	conn := mocks.NewConnector()
	store := mocks.NewScheduleStore()
	reg := NewRegistry(store, zerolog.Nop())
	reg.SetConnector(conn)
	t.Cleanup(reg.Shutdown)
	return reg, conn, store
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "09:30", hour: 9, minute: 30},
		{in: "00:00", hour: 0, minute: 0},
		{in: "23:59", hour: 23, minute: 59},
		{in: " 12:05 ", hour: 12, minute: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, guarderrors.ErrBadTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestRegistry_Schedule_OneShotFires(t *testing.T) {
	reg, conn, store := newFixture(t)
	ctx := context.Background()

	id, err := reg.Schedule(ctx, &entities.ScheduledTask{
		ChatID:  testChat,
		Kind:    entities.TaskKindMessage,
		Payload: "meeting now",
		FireAt:  time.Now().Add(30 * time.Millisecond),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		return len(conn.SentTexts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "meeting now", conn.SentTexts()[0].Text)

	// fired one-shots are removed from the store
	require.Eventually(t, func() bool {
		tasks, _ := store.ListByChat(ctx, testChat)
		return len(tasks) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegistry_Schedule_RejectsPastOneShot(t *testing.T) {
	reg, _, _ := newFixture(t)

	_, err := reg.Schedule(context.Background(), &entities.ScheduledTask{
		ChatID: testChat,
		Kind:   entities.TaskKindMessage,
		FireAt: time.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, guarderrors.ErrBadSchedule)
}

func TestRegistry_Schedule_RejectsBadCronSpec(t *testing.T) {
	reg, _, _ := newFixture(t)

	_, err := reg.Schedule(context.Background(), &entities.ScheduledTask{
		ChatID:    testChat,
		Kind:      entities.TaskKindReminder,
		CronSpec:  "not a cron spec",
		Recurring: true,
	})
	assert.ErrorIs(t, err, guarderrors.ErrBadSchedule)
}

func TestRegistry_Cancel_NoFurtherFire(t *testing.T) {
	reg, conn, _ := newFixture(t)
	ctx := context.Background()

	id, err := reg.Schedule(ctx, &entities.ScheduledTask{
		ChatID:  testChat,
		Kind:    entities.TaskKindMessage,
		Payload: "should not arrive",
		FireAt:  time.Now().Add(50 * time.Millisecond),
	})
	require.NoError(t, err)
	require.NoError(t, reg.Cancel(ctx, id))

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, conn.SentTexts())
}

func TestRegistry_Cancel_MissingIsNoop(t *testing.T) {
	reg, _, _ := newFixture(t)
	assert.NoError(t, reg.Cancel(context.Background(), "no-such-id"))
}

func TestRegistry_Remind_RollsOverToTomorrow(t *testing.T) {
	reg, _, store := newFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	timeOfDay := past.Format("15:04")

	id, err := reg.Remind(ctx, testChat, timeOfDay, "daily standup")
	require.NoError(t, err)

	tasks, err := store.ListByChat(ctx, testChat)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.True(t, tasks[0].Recurring)
	assert.True(t, tasks[0].FireAt.After(time.Now()), "first fire must roll to tomorrow")
	assert.Equal(t, past.Hour(), tasks[0].FireAt.Hour())
}

func TestRegistry_CancelReminder(t *testing.T) {
	reg, _, store := newFixture(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	timeOfDay := future.Format("15:04")
	_, err := reg.Remind(ctx, testChat, timeOfDay, "daily standup")
	require.NoError(t, err)

	removed, err := reg.CancelReminder(ctx, testChat, timeOfDay)
	require.NoError(t, err)
	assert.True(t, removed)

	tasks, err := store.ListByChat(ctx, testChat)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// cancelling again reports nothing removed
	removed, err = reg.CancelReminder(ctx, testChat, timeOfDay)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRegistry_Announce_ReplaceAndStop(t *testing.T) {
	reg, conn, _ := newFixture(t)

	reg.StartAnnounce(testChat, "first", 30*time.Millisecond)
	reg.StartAnnounce(testChat, "second", 30*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(conn.SentTexts()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	for _, sent := range conn.SentTexts() {
		assert.Equal(t, "second", sent.Text, "restart replaces the running loop")
	}

	assert.True(t, reg.StopAnnounce(testChat))
	n := len(conn.SentTexts())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, len(conn.SentTexts()))

	assert.False(t, reg.StopAnnounce(testChat), "stop with no loop running")
}

func TestRegistry_Rehydrate_PastDueFiresImmediately(t *testing.T) {
	reg, conn, store := newFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &entities.ScheduledTask{
		ID:      "past-due",
		ChatID:  testChat,
		Kind:    entities.TaskKindMessage,
		Payload: "missed while down",
		FireAt:  time.Now().Add(-time.Hour),
		Enabled: true,
	}))

	require.NoError(t, reg.Rehydrate(ctx))

	require.Eventually(t, func() bool {
		return len(conn.SentTexts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "missed while down", conn.SentTexts()[0].Text)
}

func TestRegistry_Rehydrate_SkipsDisabled(t *testing.T) {
	reg, conn, store := newFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &entities.ScheduledTask{
		ID:      "disabled",
		ChatID:  testChat,
		Kind:    entities.TaskKindMessage,
		Payload: "never",
		FireAt:  time.Now().Add(-time.Hour),
		Enabled: false,
	}))

	require.NoError(t, reg.Rehydrate(ctx))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, conn.SentTexts())
}
