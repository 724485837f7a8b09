package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

type messageCacheRepository struct {
	db *gorm.DB
}

// NewMessageCacheRepository creates the durable tier of the shadow cache
func NewMessageCacheRepository(db *gorm.DB) deps.MessageCacheRepository {
	return &messageCacheRepository{db: db}
}

// Save stores a shadow copy of a message body. Duplicate delivery of the
// same message overwrites the row rather than failing.
func (r *messageCacheRepository) Save(ctx context.Context, msg *entities.CachedMessage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			UpdateAll: true,
		}).
		Create(msg).Error
}

// Get returns a shadow copy without consuming it
func (r *messageCacheRepository) Get(ctx context.Context, chatID, messageID string) (*entities.CachedMessage, error) {
	var msg entities.CachedMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guarderrors.ErrMessageNotCached
		}
		return nil, err
	}
	return &msg, nil
}

// PurgeOlderThan deletes rows captured before the cutoff
func (r *messageCacheRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("captured_at < ?", cutoff).
		Delete(&entities.CachedMessage{})
	return res.RowsAffected, res.Error
}
