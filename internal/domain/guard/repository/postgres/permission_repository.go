package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
)

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates the moderation bypass list repository
func NewPermissionRepository(db *gorm.DB) deps.PermissionRepository {
	return &permissionRepository{db: db}
}

// Permit adds a user to a policy's bypass list
func (r *permissionRepository) Permit(ctx context.Context, chatID, userID, policy string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.PermittedUser{ChatID: chatID, UserID: userID, Policy: policy}).Error
}

// Revoke removes a user from a policy's bypass list
func (r *permissionRepository) Revoke(ctx context.Context, chatID, userID, policy string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND policy = ?", chatID, userID, policy).
		Delete(&entities.PermittedUser{}).Error
}

// RevokeAll clears a policy's bypass list for a chat
func (r *permissionRepository) RevokeAll(ctx context.Context, chatID, policy string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND policy = ?", chatID, policy).
		Delete(&entities.PermittedUser{}).Error
}

// IsPermitted reports whether a user is on a policy's bypass list
func (r *permissionRepository) IsPermitted(ctx context.Context, chatID, userID, policy string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.PermittedUser{}).
		Where("chat_id = ? AND user_id = ? AND policy = ?", chatID, userID, policy).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
