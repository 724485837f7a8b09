package groupinfo

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps/mocks"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/pkg/retry"
)

const testChat = "12345@g.us"

func newFixture(t *testing.T) (*Service, *mocks.Connector) {
	t.Helper()
	conn := mocks.NewConnector()
	conn.Meta[testChat] = &entities.GroupMetadata{
		ChatID:  testChat,
		Subject: "Test Group",
		Participants: []entities.Participant{
			{ID: "7@s.whatsapp.net", IsAdmin: true},
			{ID: "42@s.whatsapp.net"},
		},
	}
	svc := NewService(zerolog.Nop())
	svc.SetConnector(conn)
	return svc, conn
}

func TestService_Metadata_CachesLookups(t *testing.T) {
	svc, conn := newFixture(t)
	ctx := context.Background()

	meta, err := svc.Metadata(ctx, testChat)
	require.NoError(t, err)
	assert.Equal(t, "Test Group", meta.Subject)

	_, err = svc.Metadata(ctx, testChat)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.MetaCalls, "second lookup served from cache")
}

func TestService_Invalidate(t *testing.T) {
	svc, conn := newFixture(t)
	ctx := context.Background()

	_, err := svc.Metadata(ctx, testChat)
	require.NoError(t, err)

	svc.Invalidate(testChat)
	_, err = svc.Metadata(ctx, testChat)
	require.NoError(t, err)
	assert.Equal(t, 2, conn.MetaCalls)
}

func TestService_IsAdmin(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	assert.True(t, svc.IsAdmin(ctx, testChat, "7@s.whatsapp.net"))
	assert.False(t, svc.IsAdmin(ctx, testChat, "42@s.whatsapp.net"))
	assert.False(t, svc.IsAdmin(ctx, testChat, "unknown@s.whatsapp.net"))
}

func TestService_IsAdmin_FetchFailureReadsNonAdmin(t *testing.T) {
	svc, conn := newFixture(t)
	svc.policy = retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}
	conn.MetaErr = assert.AnError

	assert.False(t, svc.IsAdmin(context.Background(), testChat, "7@s.whatsapp.net"))
	assert.Equal(t, 3, conn.MetaCalls, "metadata fetch is retried")
}
