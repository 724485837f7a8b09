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

type pollRepository struct {
	db *gorm.DB
}

// NewPollRepository creates the poll repository
func NewPollRepository(db *gorm.DB) deps.PollRepository {
	return &pollRepository{db: db}
}

// Get returns the chat's poll
func (r *pollRepository) Get(ctx context.Context, chatID string) (*entities.Poll, error) {
	var poll entities.Poll
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&poll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guarderrors.ErrPollNotFound
		}
		return nil, err
	}
	return &poll, nil
}

// Create inserts a poll. One active poll per chat: an existing row is a
// conflict, not an overwrite.
func (r *pollRepository) Create(ctx context.Context, poll *entities.Poll) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoNothing: true,
		}).
		Create(poll)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guarderrors.ErrPollAlreadyRunning
	}
	return nil
}

// UpdateVotes replaces the vote tally JSON
func (r *pollRepository) UpdateVotes(ctx context.Context, chatID, votes string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Poll{}).
		Where("chat_id = ?", chatID).
		Update("votes", votes).Error
}

// Delete removes the chat's poll
func (r *pollRepository) Delete(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&entities.Poll{}).Error
}
