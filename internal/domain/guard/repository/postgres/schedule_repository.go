package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
)

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates the scheduled task repository
func NewScheduleRepository(db *gorm.DB) deps.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Save stores a task
func (r *scheduleRepository) Save(ctx context.Context, task *entities.ScheduledTask) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(task).Error
}

// Delete removes a task by id
func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entities.ScheduledTask{}).Error
}

// DeleteReminder removes the reminder of a chat firing at the given time of
// day and reports whether a row was removed
func (r *scheduleRepository) DeleteReminder(ctx context.Context, chatID string, hour, minute int) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("chat_id = ? AND kind = ? AND extract(hour from fire_at) = ? AND extract(minute from fire_at) = ?",
			chatID, entities.TaskKindReminder, hour, minute).
		Delete(&entities.ScheduledTask{})
	return res.RowsAffected > 0, res.Error
}

// ListByChat returns all tasks of a chat
func (r *scheduleRepository) ListByChat(ctx context.Context, chatID string) ([]entities.ScheduledTask, error) {
	var tasks []entities.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("fire_at").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListEnabled returns every enabled task for startup rehydration
func (r *scheduleRepository) ListEnabled(ctx context.Context) ([]entities.ScheduledTask, error) {
	var tasks []entities.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
