package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
)

// scopeRow matches the column layout shared by the anti-delete and
// view-once scope tables
type scopeRow struct {
	ID          uint `gorm:"primaryKey;column:id"`
	Global      bool `gorm:"column:global_enabled"`
	GroupOnly   bool `gorm:"column:group_only"`
	PrivateOnly bool `gorm:"column:private_only"`
}

type chatRow struct {
	ChatID string `gorm:"primaryKey;column:chat_id"`
}

// scopedToggleRepository implements the scope chain storage for one feature,
// parameterized by its two table names
type scopedToggleRepository struct {
	db         *gorm.DB
	scopeTable string
	chatTable  string
}

// NewAntiDeleteRepository creates the scope storage for the anti-delete feature
func NewAntiDeleteRepository(db *gorm.DB) deps.ScopedToggleRepository {
	return &scopedToggleRepository{db: db, scopeTable: "anti_delete_settings", chatTable: "anti_delete_chats"}
}

// NewViewOnceRepository creates the scope storage for the view-once feature
func NewViewOnceRepository(db *gorm.DB) deps.ScopedToggleRepository {
	return &scopedToggleRepository{db: db, scopeTable: "view_once_settings", chatTable: "view_once_chats"}
}

// GetScopes returns the wide scopes. A missing singleton row means every
// scope is off.
func (r *scopedToggleRepository) GetScopes(ctx context.Context) (bool, bool, bool, error) {
	var row scopeRow
	err := r.db.WithContext(ctx).
		Table(r.scopeTable).
		Where("id = ?", 1).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, false, nil
		}
		return false, false, false, err
	}
	return row.Global, row.GroupOnly, row.PrivateOnly, nil
}

// SetScope flips one wide scope
func (r *scopedToggleRepository) SetScope(ctx context.Context, scope string, enabled bool) error {
	var column string
	switch scope {
	case "global":
		column = "global_enabled"
	case "group":
		column = "group_only"
	case "private":
		column = "private_only"
	default:
		return fmt.Errorf("unknown scope %q", scope)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(r.scopeTable).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).
			Create(&scopeRow{ID: 1}).Error
		if err != nil {
			return err
		}
		return tx.Table(r.scopeTable).
			Where("id = ?", 1).
			Update(column, enabled).Error
	})
}

// IsChatEnabled reports whether the per-chat flag is set
func (r *scopedToggleRepository) IsChatEnabled(ctx context.Context, chatID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(r.chatTable).
		Where("chat_id = ?", chatID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetChat flips the per-chat flag
func (r *scopedToggleRepository) SetChat(ctx context.Context, chatID string, enabled bool) error {
	if enabled {
		return r.db.WithContext(ctx).
			Table(r.chatTable).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "chat_id"}},
				DoNothing: true,
			}).
			Create(&chatRow{ChatID: chatID}).Error
	}
	return r.db.WithContext(ctx).
		Table(r.chatTable).
		Where("chat_id = ?", chatID).
		Delete(&chatRow{}).Error
}
