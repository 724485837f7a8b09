package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

type customCommandRepository struct {
	db *gorm.DB
}

// NewCustomCommandRepository creates the store-registered command repository
func NewCustomCommandRepository(db *gorm.DB) deps.CustomCommandRepository {
	return &customCommandRepository{db: db}
}

// Get returns a custom command by name
func (r *customCommandRepository) Get(ctx context.Context, name string) (*entities.CustomCommand, error) {
	var cmd entities.CustomCommand
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&cmd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guarderrors.ErrCommandNotFound
		}
		return nil, err
	}
	return &cmd, nil
}

// Upsert registers or replaces a custom command
func (r *customCommandRepository) Upsert(ctx context.Context, cmd *entities.CustomCommand) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			UpdateAll: true,
		}).
		Create(cmd).Error
}

// Delete removes a custom command
func (r *customCommandRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&entities.CustomCommand{}).Error
}
