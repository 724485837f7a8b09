// Package groupinfo provides cached, retried group metadata lookups
package groupinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	"github.com/groupwarden/groupwarden/pkg/retry"
)

const (
	cacheSize = 256
	cacheTTL  = 5 * time.Minute
)

// Service answers group metadata questions. Lookups against the connector
// are not fully reliable, so every fetch goes through the retry policy, and
// results are cached for a few minutes to keep moderation checks off the
// network.
type Service struct {
	conn   deps.Connector
	policy retry.Policy
	cache  *expirable.LRU[string, *entities.GroupMetadata]
	logger zerolog.Logger
}

// NewService creates a new metadata service
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		policy: retry.Default,
		cache:  expirable.NewLRU[string, *entities.GroupMetadata](cacheSize, nil, cacheTTL),
		logger: logger,
	}
}

// SetConnector sets the connector after construction. The live connector
// handle only exists once the bootstrap attaches it.
func (s *Service) SetConnector(conn deps.Connector) {
	s.conn = conn
}

// Metadata returns the group metadata for a chat, from cache when fresh
func (s *Service) Metadata(ctx context.Context, chatID string) (*entities.GroupMetadata, error) {
	if meta, ok := s.cache.Get(chatID); ok {
		return meta, nil
	}

	meta, err := retry.DoValue(ctx, s.policy, func() (*entities.GroupMetadata, error) {
		return s.conn.GroupMetadata(ctx, chatID)
	})
	if err != nil {
		return nil, fmt.Errorf("group metadata for %s: %w", chatID, err)
	}

	s.cache.Add(chatID, meta)
	return meta, nil
}

// IsAdmin reports whether user holds admin or superadmin in the chat.
// A metadata failure after retries reads as "not an admin".
func (s *Service) IsAdmin(ctx context.Context, chatID, user string) bool {
	meta, err := s.Metadata(ctx, chatID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chat", chatID).Msg("Admin check failed, treating as non-admin")
		return false
	}
	return meta.IsAdmin(user)
}

// Invalidate drops the cached metadata of a chat, used after membership
// changes so promote/demote and kick results are visible immediately
func (s *Service) Invalidate(chatID string) {
	s.cache.Remove(chatID)
}
