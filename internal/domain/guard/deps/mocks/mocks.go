// Package mocks contains hand-written in-memory fakes of the deps
// interfaces for tests
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

// SentText records one outbound text message
type SentText struct {
	ChatID   string
	Text     string
	Mentions []string
}

// SentMedia records one outbound image or video
type SentMedia struct {
	ChatID  string
	Kind    entities.MediaKind
	Payload []byte
	Caption string
}

// Connector is an in-memory deps.Connector that records every call
type Connector struct {
	mu sync.Mutex

	ID       string
	Texts    []SentText
	Media    []SentMedia
	Deleted  []string
	Reacted  []string
	Removed  [][]string
	Promoted [][]string
	Demoted  [][]string
	Muted    map[string]bool

	Meta          map[string]*entities.GroupMetadata
	MetaErr       error
	MetaCalls     int
	SendErr       error
	RemoveErr     error
	DownloadData  []byte
	DownloadKind  entities.MediaKind
	DownloadErr   error
	DownloadCalls int
}

// NewConnector creates an empty fake connector
func NewConnector() *Connector {
	return &Connector{
		ID:    "bot@s.whatsapp.net",
		Muted: make(map[string]bool),
		Meta:  make(map[string]*entities.GroupMetadata),
	}
}

func (c *Connector) SendText(_ context.Context, chatID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.Texts = append(c.Texts, SentText{ChatID: chatID, Text: text})
	return nil
}

func (c *Connector) SendTextMentions(_ context.Context, chatID, text string, mentions []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.Texts = append(c.Texts, SentText{ChatID: chatID, Text: text, Mentions: mentions})
	return nil
}

func (c *Connector) SendImage(_ context.Context, chatID string, payload []byte, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Media = append(c.Media, SentMedia{ChatID: chatID, Kind: entities.MediaImage, Payload: payload, Caption: caption})
	return nil
}

func (c *Connector) SendVideo(_ context.Context, chatID string, payload []byte, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Media = append(c.Media, SentMedia{ChatID: chatID, Kind: entities.MediaVideo, Payload: payload, Caption: caption})
	return nil
}

func (c *Connector) DeleteMessage(_ context.Context, _, messageID, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, messageID)
	return nil
}

func (c *Connector) React(_ context.Context, _, messageID, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reacted = append(c.Reacted, messageID)
	return nil
}

func (c *Connector) RemoveParticipants(_ context.Context, _ string, users []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.RemoveErr != nil {
		return c.RemoveErr
	}
	c.Removed = append(c.Removed, users)
	return nil
}

func (c *Connector) PromoteParticipants(_ context.Context, _ string, users []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Promoted = append(c.Promoted, users)
	return nil
}

func (c *Connector) DemoteParticipants(_ context.Context, _ string, users []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Demoted = append(c.Demoted, users)
	return nil
}

func (c *Connector) SetAnnouncementMode(_ context.Context, chatID string, announcement bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Muted[chatID] = announcement
	return nil
}

func (c *Connector) GroupMetadata(_ context.Context, chatID string) (*entities.GroupMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MetaCalls++
	if c.MetaErr != nil {
		return nil, c.MetaErr
	}
	if meta, ok := c.Meta[chatID]; ok {
		return meta, nil
	}
	return &entities.GroupMetadata{ChatID: chatID}, nil
}

func (c *Connector) DownloadMedia(_ context.Context, _, _ string) ([]byte, entities.MediaKind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DownloadCalls++
	return c.DownloadData, c.DownloadKind, c.DownloadErr
}

func (c *Connector) BotID() string { return c.ID }

// SentTexts returns a snapshot of the recorded text sends
func (c *Connector) SentTexts() []SentText {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentText, len(c.Texts))
	copy(out, c.Texts)
	return out
}

var _ deps.Connector = (*Connector)(nil)

// SettingsStore is an in-memory deps.SettingsRepository
type SettingsStore struct {
	mu     sync.Mutex
	Rows   map[string]*entities.GroupSettings
	Prefix string
	Err    error
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{Rows: make(map[string]*entities.GroupSettings)}
}

func (s *SettingsStore) Get(_ context.Context, chatID string) (*entities.GroupSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	row, ok := s.Rows[chatID]
	if !ok {
		return nil, guarderrors.ErrSettingsNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *SettingsStore) Upsert(_ context.Context, settings *entities.GroupSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *settings
	s.Rows[settings.ChatID] = &cp
	return nil
}

func (s *SettingsStore) Patch(_ context.Context, chatID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[chatID]
	if !ok {
		row = &entities.GroupSettings{ChatID: chatID, BotEnabled: true}
		s.Rows[chatID] = row
	}
	for col, val := range fields {
		switch col {
		case "bot_enabled":
			row.BotEnabled = val.(bool)
		case "antilink_enabled":
			row.AntiLinkEnabled = val.(bool)
		case "antisales_enabled":
			row.AntiSalesEnabled = val.(bool)
		case "permit_admin_bypass":
			row.PermitAdminBypass = val.(bool)
		case "welcome_enabled":
			row.WelcomeEnabled = val.(bool)
		case "welcome_text":
			row.WelcomeText = val.(string)
		case "goodbye_enabled":
			row.GoodbyeEnabled = val.(bool)
		case "language":
			row.Language = val.(string)
		case "rules":
			row.Rules = val.(string)
		}
	}
	return nil
}

func (s *SettingsStore) GetPrefix(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Prefix == "" {
		return "", guarderrors.ErrSettingsNotFound
	}
	return s.Prefix, nil
}

func (s *SettingsStore) SetPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prefix = prefix
	return nil
}

var _ deps.SettingsRepository = (*SettingsStore)(nil)

// WarningStore is an in-memory deps.WarningRepository
type WarningStore struct {
	mu   sync.Mutex
	Rows map[string]*entities.WarningRecord
}

func NewWarningStore() *WarningStore {
	return &WarningStore{Rows: make(map[string]*entities.WarningRecord)}
}

func warningKey(chatID, userID, reason string) string {
	return chatID + "|" + userID + "|" + reason
}

func (s *WarningStore) Get(_ context.Context, chatID, userID, reason string) (*entities.WarningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[warningKey(chatID, userID, reason)]
	if !ok {
		return nil, guarderrors.ErrWarningNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *WarningStore) Upsert(_ context.Context, rec *entities.WarningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.UpdatedAt = time.Now()
	s.Rows[warningKey(rec.ChatID, rec.UserID, rec.Reason)] = &cp
	return nil
}

func (s *WarningStore) Delete(_ context.Context, chatID, userID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, warningKey(chatID, userID, reason))
	return nil
}

func (s *WarningStore) DeleteAll(_ context.Context, chatID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, row := range s.Rows {
		if row.ChatID == chatID && row.UserID == userID {
			delete(s.Rows, key)
		}
	}
	return nil
}

func (s *WarningStore) ListByChat(_ context.Context, chatID string) ([]entities.WarningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.WarningRecord
	for _, row := range s.Rows {
		if row.ChatID == chatID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *WarningStore) PurgeOlderThan(_ context.Context, cutoff time.Time) ([]entities.WarningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged []entities.WarningRecord
	for key, row := range s.Rows {
		if row.UpdatedAt.Before(cutoff) {
			purged = append(purged, *row)
			delete(s.Rows, key)
		}
	}
	return purged, nil
}

var _ deps.WarningRepository = (*WarningStore)(nil)

// MessageCacheStore is an in-memory deps.MessageCacheRepository
type MessageCacheStore struct {
	mu   sync.Mutex
	Rows map[string]*entities.CachedMessage
	Err  error
}

func NewMessageCacheStore() *MessageCacheStore {
	return &MessageCacheStore{Rows: make(map[string]*entities.CachedMessage)}
}

func (s *MessageCacheStore) Save(_ context.Context, msg *entities.CachedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cp := *msg
	s.Rows[msg.ChatID+"|"+msg.MessageID] = &cp
	return nil
}

func (s *MessageCacheStore) Get(_ context.Context, chatID, messageID string) (*entities.CachedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[chatID+"|"+messageID]
	if !ok {
		return nil, guarderrors.ErrMessageNotCached
	}
	cp := *row
	return &cp, nil
}

func (s *MessageCacheStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, row := range s.Rows {
		if row.CapturedAt.Before(cutoff) {
			delete(s.Rows, key)
			n++
		}
	}
	return n, nil
}

var _ deps.MessageCacheRepository = (*MessageCacheStore)(nil)

// ScopedToggleStore is an in-memory deps.ScopedToggleRepository
type ScopedToggleStore struct {
	mu          sync.Mutex
	Global      bool
	GroupOnly   bool
	PrivateOnly bool
	Chats       map[string]bool
	Err         error
}

func NewScopedToggleStore() *ScopedToggleStore {
	return &ScopedToggleStore{Chats: make(map[string]bool)}
}

func (s *ScopedToggleStore) GetScopes(_ context.Context) (bool, bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, false, false, s.Err
	}
	return s.Global, s.GroupOnly, s.PrivateOnly, nil
}

func (s *ScopedToggleStore) SetScope(_ context.Context, scope string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch scope {
	case "global":
		s.Global = enabled
	case "group":
		s.GroupOnly = enabled
	case "private":
		s.PrivateOnly = enabled
	}
	return nil
}

func (s *ScopedToggleStore) IsChatEnabled(_ context.Context, chatID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Chats[chatID], nil
}

func (s *ScopedToggleStore) SetChat(_ context.Context, chatID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Chats[chatID] = enabled
	return nil
}

var _ deps.ScopedToggleRepository = (*ScopedToggleStore)(nil)

// PermissionStore is an in-memory deps.PermissionRepository
type PermissionStore struct {
	mu   sync.Mutex
	Rows map[string]bool
}

func NewPermissionStore() *PermissionStore {
	return &PermissionStore{Rows: make(map[string]bool)}
}

func permKey(chatID, userID, policy string) string {
	return chatID + "|" + userID + "|" + policy
}

func (s *PermissionStore) Permit(_ context.Context, chatID, userID, policy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rows[permKey(chatID, userID, policy)] = true
	return nil
}

func (s *PermissionStore) Revoke(_ context.Context, chatID, userID, policy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, permKey(chatID, userID, policy))
	return nil
}

func (s *PermissionStore) RevokeAll(_ context.Context, chatID, policy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.Rows {
		if len(key) > len(chatID) && key[:len(chatID)] == chatID && key[len(key)-len(policy):] == policy {
			delete(s.Rows, key)
		}
	}
	return nil
}

func (s *PermissionStore) IsPermitted(_ context.Context, chatID, userID, policy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Rows[permKey(chatID, userID, policy)], nil
}

var _ deps.PermissionRepository = (*PermissionStore)(nil)

// ScheduleStore is an in-memory deps.ScheduleRepository
type ScheduleStore struct {
	mu   sync.Mutex
	Rows map[string]*entities.ScheduledTask
	Err  error
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{Rows: make(map[string]*entities.ScheduledTask)}
}

func (s *ScheduleStore) Save(_ context.Context, task *entities.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.Rows[task.ID] = &cp
	return nil
}

func (s *ScheduleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, id)
	return nil
}

func (s *ScheduleStore) DeleteReminder(_ context.Context, chatID string, hour, minute int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for id, row := range s.Rows {
		if row.ChatID == chatID && row.Kind == entities.TaskKindReminder &&
			row.FireAt.Hour() == hour && row.FireAt.Minute() == minute {
			delete(s.Rows, id)
			removed = true
		}
	}
	return removed, nil
}

func (s *ScheduleStore) ListByChat(_ context.Context, chatID string) ([]entities.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []entities.ScheduledTask
	for _, row := range s.Rows {
		if row.ChatID == chatID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *ScheduleStore) ListEnabled(_ context.Context) ([]entities.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.ScheduledTask
	for _, row := range s.Rows {
		if row.Enabled {
			out = append(out, *row)
		}
	}
	return out, nil
}

var _ deps.ScheduleRepository = (*ScheduleStore)(nil)

// PollStore is an in-memory deps.PollRepository
type PollStore struct {
	mu   sync.Mutex
	Rows map[string]*entities.Poll
}

func NewPollStore() *PollStore {
	return &PollStore{Rows: make(map[string]*entities.Poll)}
}

func (s *PollStore) Get(_ context.Context, chatID string) (*entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[chatID]
	if !ok {
		return nil, guarderrors.ErrPollNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *PollStore) Create(_ context.Context, poll *entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Rows[poll.ChatID]; ok {
		return guarderrors.ErrPollAlreadyRunning
	}
	cp := *poll
	s.Rows[poll.ChatID] = &cp
	return nil
}

func (s *PollStore) UpdateVotes(_ context.Context, chatID, votes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[chatID]
	if !ok {
		return guarderrors.ErrPollNotFound
	}
	row.Votes = votes
	return nil
}

func (s *PollStore) Delete(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, chatID)
	return nil
}

var _ deps.PollRepository = (*PollStore)(nil)

// CommandStore is an in-memory deps.CustomCommandRepository
type CommandStore struct {
	mu   sync.Mutex
	Rows map[string]*entities.CustomCommand
}

func NewCommandStore() *CommandStore {
	return &CommandStore{Rows: make(map[string]*entities.CustomCommand)}
}

func (s *CommandStore) Get(_ context.Context, name string) (*entities.CustomCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.Rows[name]
	if !ok {
		return nil, guarderrors.ErrCommandNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *CommandStore) Upsert(_ context.Context, cmd *entities.CustomCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cmd
	s.Rows[cmd.Name] = &cp
	return nil
}

func (s *CommandStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rows, name)
	return nil
}

var _ deps.CustomCommandRepository = (*CommandStore)(nil)
