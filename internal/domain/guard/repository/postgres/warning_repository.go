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

type warningRepository struct {
	db *gorm.DB
}

// NewWarningRepository creates a new warning record repository
func NewWarningRepository(db *gorm.DB) deps.WarningRepository {
	return &warningRepository{db: db}
}

// Get returns the record for a (chat, user, reason) bucket
func (r *warningRepository) Get(ctx context.Context, chatID, userID, reason string) (*entities.WarningRecord, error) {
	var rec entities.WarningRecord
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND reason = ?", chatID, userID, reason).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guarderrors.ErrWarningNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert writes a warning record
func (r *warningRepository) Upsert(ctx context.Context, rec *entities.WarningRecord) error {
	rec.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}, {Name: "reason"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

// Delete removes one reason bucket for a user
func (r *warningRepository) Delete(ctx context.Context, chatID, userID, reason string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND reason = ?", chatID, userID, reason).
		Delete(&entities.WarningRecord{}).Error
}

// DeleteAll removes every bucket for a user in a chat
func (r *warningRepository) DeleteAll(ctx context.Context, chatID, userID string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&entities.WarningRecord{}).Error
}

// ListByChat returns all records of a chat
func (r *warningRepository) ListByChat(ctx context.Context, chatID string) ([]entities.WarningRecord, error) {
	var recs []entities.WarningRecord
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("user_id, reason").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// PurgeOlderThan deletes records not updated since the cutoff and returns
// the purged rows
func (r *warningRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) ([]entities.WarningRecord, error) {
	var purged []entities.WarningRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("updated_at < ?", cutoff).Find(&purged).Error; err != nil {
			return err
		}
		if len(purged) == 0 {
			return nil
		}
		return tx.Where("updated_at < ?", cutoff).Delete(&entities.WarningRecord{}).Error
	})
	if err != nil {
		return nil, err
	}
	return purged, nil
}
