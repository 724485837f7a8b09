// Package schedule runs the task registry: one-shot deliveries, recurring
// reminders and in-memory announce loops
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

// Registry owns every armed timer. One-shot tasks hold a time.Timer,
// recurring ones a cron entry, announce loops a ticker goroutine. All three
// maps share the registry lock so Cancel can guarantee no further fire once
// it returns.
type Registry struct {
	store  deps.ScheduleRepository
	conn   deps.Connector
	cron   *cron.Cron
	logger zerolog.Logger

	mu       sync.Mutex
	timers   map[string]*time.Timer
	entries  map[string]cron.EntryID
	announce map[string]chan struct{}
}

// NewRegistry creates the registry with its cron runner stopped. Start the
// runner (and rehydrate persisted tasks) once the connector is attached.
func NewRegistry(store deps.ScheduleRepository, logger zerolog.Logger) *Registry {
	return &Registry{
		store:    store,
		cron:     cron.New(),
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		entries:  make(map[string]cron.EntryID),
		announce: make(map[string]chan struct{}),
	}
}

// SetConnector sets the connector after construction
func (r *Registry) SetConnector(conn deps.Connector) {
	r.conn = conn
}

// Start begins running recurring entries
func (r *Registry) Start() {
	r.cron.Start()
}

// Schedule validates, persists and arms a task, returning its id. One-shot
// tasks need a future FireAt; recurring ones a parseable cron spec.
func (r *Registry) Schedule(ctx context.Context, task *entities.ScheduledTask) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Enabled = true
	task.CreatedAt = time.Now()

	if task.Recurring {
		if _, err := cron.ParseStandard(task.CronSpec); err != nil {
			return "", guarderrors.ErrBadSchedule
		}
	} else if !task.FireAt.After(time.Now()) {
		return "", guarderrors.ErrBadSchedule
	}

	if err := r.store.Save(ctx, task); err != nil {
		return "", fmt.Errorf("save task: %w", err)
	}

	if err := r.arm(task); err != nil {
		return "", err
	}

	r.logger.Info().
		Str("task", task.ID).
		Str("chat", task.ChatID).
		Str("kind", task.Kind).
		Bool("recurring", task.Recurring).
		Msg("scheduled task")
	return task.ID, nil
}

// Remind schedules a daily reminder at an HH:MM time of day. The first fire
// is today at that time, or tomorrow when the time has already passed.
func (r *Registry) Remind(ctx context.Context, chatID, timeOfDay, text string) (string, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return "", err
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !first.After(now) {
		first = first.Add(24 * time.Hour)
	}

	task := &entities.ScheduledTask{
		ChatID:    chatID,
		Kind:      entities.TaskKindReminder,
		Payload:   text,
		FireAt:    first,
		CronSpec:  fmt.Sprintf("%d %d * * *", minute, hour),
		Recurring: true,
	}
	return r.Schedule(ctx, task)
}

// Cancel disarms and deletes a task. A missing id is a success: the caller
// wanted the task gone and it is.
func (r *Registry) Cancel(ctx context.Context, id string) error {
	r.disarm(id)
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// CancelReminder removes the chat's reminder firing at the given HH:MM time
// of day and reports whether one existed
func (r *Registry) CancelReminder(ctx context.Context, chatID, timeOfDay string) (bool, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, err
	}

	tasks, err := r.store.ListByChat(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		if t.Kind == entities.TaskKindReminder && t.FireAt.Hour() == hour && t.FireAt.Minute() == minute {
			r.disarm(t.ID)
		}
	}

	return r.store.DeleteReminder(ctx, chatID, hour, minute)
}

// List returns a chat's persisted tasks
func (r *Registry) List(ctx context.Context, chatID string) ([]entities.ScheduledTask, error) {
	return r.store.ListByChat(ctx, chatID)
}

// StartAnnounce begins repeating a text into a chat at a fixed interval.
// Announce loops live only in memory; calling again for the same chat
// replaces the running loop.
func (r *Registry) StartAnnounce(chatID, text string, interval time.Duration) {
	r.mu.Lock()
	if stop, ok := r.announce[chatID]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	r.announce[chatID] = stop
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.deliver(chatID, text)
			}
		}
	}()

	r.logger.Info().Str("chat", chatID).Dur("interval", interval).Msg("announce loop started")
}

// StopAnnounce stops the chat's announce loop and reports whether one was
// running
func (r *Registry) StopAnnounce(chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	stop, ok := r.announce[chatID]
	if !ok {
		return false
	}
	close(stop)
	delete(r.announce, chatID)
	return true
}

// Rehydrate re-arms every enabled persisted task at startup. Past-due
// one-shots fire immediately rather than being dropped.
func (r *Registry) Rehydrate(ctx context.Context) error {
	tasks, err := r.store.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled tasks: %w", err)
	}

	for i := range tasks {
		task := tasks[i]
		if err := r.arm(&task); err != nil {
			r.logger.Error().Err(err).Str("task", task.ID).Msg("failed to rehydrate task")
		}
	}

	r.logger.Info().Int("count", len(tasks)).Msg("rehydrated scheduled tasks")
	return nil
}

// Shutdown disarms every timer, cron entry and announce loop
func (r *Registry) Shutdown() {
	r.cron.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	for id, e := range r.entries {
		r.cron.Remove(e)
		delete(r.entries, id)
	}
	for chat, stop := range r.announce {
		close(stop)
		delete(r.announce, chat)
	}
}

func (r *Registry) arm(task *entities.ScheduledTask) error {
	if task.Recurring {
		id := task.ID
		chatID := task.ChatID
		payload := task.Payload
		entry, err := r.cron.AddFunc(task.CronSpec, func() {
			r.fireRecurring(id, chatID, payload)
		})
		if err != nil {
			return guarderrors.ErrBadSchedule
		}
		r.mu.Lock()
		r.entries[task.ID] = entry
		r.mu.Unlock()
		return nil
	}

	delay := time.Until(task.FireAt)
	if delay < 0 {
		delay = 0
	}
	id := task.ID
	chatID := task.ChatID
	payload := task.Payload
	timer := time.AfterFunc(delay, func() {
		r.fireOneShot(id, chatID, payload)
	})
	r.mu.Lock()
	r.timers[task.ID] = timer
	r.mu.Unlock()
	return nil
}

func (r *Registry) disarm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
	if e, ok := r.entries[id]; ok {
		r.cron.Remove(e)
		delete(r.entries, id)
	}
}

func (r *Registry) fireOneShot(id, chatID, payload string) {
	r.mu.Lock()
	_, armed := r.timers[id]
	delete(r.timers, id)
	r.mu.Unlock()
	if !armed {
		return
	}

	r.deliver(chatID, payload)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.store.Delete(ctx, id); err != nil {
		r.logger.Error().Err(err).Str("task", id).Msg("failed to delete fired task")
	}
}

func (r *Registry) fireRecurring(id, chatID, payload string) {
	r.mu.Lock()
	_, armed := r.entries[id]
	r.mu.Unlock()
	if !armed {
		return
	}
	r.deliver(chatID, payload)
}

func (r *Registry) deliver(chatID, payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.conn.SendText(ctx, chatID, payload); err != nil {
		r.logger.Error().Err(err).Str("chat", chatID).Msg("failed to deliver scheduled message")
	}
}

// ParseTimeOfDay parses an "HH:MM" 24-hour clock string
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, guarderrors.ErrBadTimeOfDay
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, guarderrors.ErrBadTimeOfDay
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, guarderrors.ErrBadTimeOfDay
	}
	return hour, minute, nil
}
