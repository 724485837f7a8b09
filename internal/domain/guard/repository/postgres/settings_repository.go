// Package postgres contains gorm-backed repositories for the guard domain
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

// botConfigID is the fixed primary key of the singleton bot config row
const botConfigID = 1

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) deps.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the settings row for a chat
func (r *settingsRepository) Get(ctx context.Context, chatID string) (*entities.GroupSettings, error) {
	var settings entities.GroupSettings
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guarderrors.ErrSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Upsert writes a settings row, creating it on first write
func (r *settingsRepository) Upsert(ctx context.Context, settings *entities.GroupSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}

// Patch updates the named columns of a chat's settings row. The row is
// created with its schema defaults first so toggling a flag on a chat the
// bot has never written works.
func (r *settingsRepository) Patch(ctx context.Context, chatID string, fields map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "chat_id"}},
				DoNothing: true,
			}).
			Create(&entities.GroupSettings{ChatID: chatID, UpdatedAt: time.Now()}).Error
		if err != nil {
			return err
		}

		fields["updated_at"] = time.Now()
		return tx.Model(&entities.GroupSettings{}).
			Where("chat_id = ?", chatID).
			Updates(fields).Error
	})
}

// GetPrefix returns the current command prefix
func (r *settingsRepository) GetPrefix(ctx context.Context) (string, error) {
	var cfg entities.BotConfig
	err := r.db.WithContext(ctx).
		Where("id = ?", botConfigID).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", guarderrors.ErrSettingsNotFound
		}
		return "", err
	}
	return cfg.Prefix, nil
}

// SetPrefix stores the command prefix
func (r *settingsRepository) SetPrefix(ctx context.Context, prefix string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&entities.BotConfig{ID: botConfigID, Prefix: prefix}).Error
}
