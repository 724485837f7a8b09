// Package deps contains interface definitions for the guard domain dependencies
package deps

import (
	"context"
	"time"

	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
)

// Connector defines the outbound surface of the messaging transport. The
// transport itself lives outside this module; the engine only ever talks to
// this interface.
type Connector interface {
	// SendText sends a plain text message to a chat
	SendText(ctx context.Context, chatID, text string) error

	// SendTextMentions sends a text message that mentions the given users
	SendTextMentions(ctx context.Context, chatID, text string, mentions []string) error

	// SendImage uploads and sends an image with a caption
	SendImage(ctx context.Context, chatID string, payload []byte, caption string) error

	// SendVideo uploads and sends a video with a caption
	SendVideo(ctx context.Context, chatID string, payload []byte, caption string) error

	// DeleteMessage revokes a message for everyone in the chat
	DeleteMessage(ctx context.Context, chatID, messageID, sender string) error

	// React attaches an emoji reaction to a message
	React(ctx context.Context, chatID, messageID, emoji string) error

	// RemoveParticipants kicks users out of a group
	RemoveParticipants(ctx context.Context, chatID string, users []string) error

	// PromoteParticipants grants admin to users in a group
	PromoteParticipants(ctx context.Context, chatID string, users []string) error

	// DemoteParticipants revokes admin from users in a group
	DemoteParticipants(ctx context.Context, chatID string, users []string) error

	// SetAnnouncementMode locks (true) or unlocks (false) a group so only
	// admins can post
	SetAnnouncementMode(ctx context.Context, chatID string, announcement bool) error

	// GroupMetadata fetches the group subject and participant list
	GroupMetadata(ctx context.Context, chatID string) (*entities.GroupMetadata, error)

	// DownloadMedia fetches the raw media payload of a message
	DownloadMedia(ctx context.Context, chatID, messageID string) ([]byte, entities.MediaKind, error)

	// BotID returns the connector's own user identity
	BotID() string
}

// EventSink receives inbound connector events. The bootstrap wires the live
// connector's event stream into this interface.
type EventSink interface {
	HandleMessage(ev *entities.MessageEvent)
	HandleDeletion(ev *entities.DeletionEvent)
	HandleMembership(ev *entities.MembershipEvent)
}

// SettingsRepository defines typed access to per-chat settings and the
// mutable bot configuration
type SettingsRepository interface {
	// Get returns the settings row for a chat, or NotFound
	Get(ctx context.Context, chatID string) (*entities.GroupSettings, error)

	// Upsert writes a settings row, creating it on first write
	Upsert(ctx context.Context, settings *entities.GroupSettings) error

	// Patch updates the named columns of a chat's settings row, creating the
	// row with defaults first if it does not exist
	Patch(ctx context.Context, chatID string, fields map[string]any) error

	// GetPrefix returns the current command prefix, or NotFound when never set
	GetPrefix(ctx context.Context) (string, error)

	// SetPrefix stores the command prefix
	SetPrefix(ctx context.Context, prefix string) error
}

// WarningRepository defines access to warning records
type WarningRepository interface {
	// Get returns the record for a (chat, user, reason) bucket, or NotFound
	Get(ctx context.Context, chatID, userID, reason string) (*entities.WarningRecord, error)

	// Upsert writes a warning record
	Upsert(ctx context.Context, rec *entities.WarningRecord) error

	// Delete removes one reason bucket for a user; missing rows are fine
	Delete(ctx context.Context, chatID, userID, reason string) error

	// DeleteAll removes every bucket for a user in a chat
	DeleteAll(ctx context.Context, chatID, userID string) error

	// ListByChat returns all records of a chat
	ListByChat(ctx context.Context, chatID string) ([]entities.WarningRecord, error)

	// PurgeOlderThan deletes records not updated since the cutoff and
	// returns the purged rows so affected users can be notified
	PurgeOlderThan(ctx context.Context, cutoff time.Time) ([]entities.WarningRecord, error)
}

// MessageCacheRepository defines the durable tier of the shadow cache
type MessageCacheRepository interface {
	// Save stores a shadow copy of a message body
	Save(ctx context.Context, msg *entities.CachedMessage) error

	// Get returns a shadow copy, or NotFound. Reads never consume the row.
	Get(ctx context.Context, chatID, messageID string) (*entities.CachedMessage, error)

	// PurgeOlderThan deletes rows captured before the cutoff
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScopedToggleRepository defines the scope rows shared by the anti-delete
// and view-once features
type ScopedToggleRepository interface {
	// GetScopes returns the wide scopes (global, group-wide, private-wide)
	GetScopes(ctx context.Context) (global, groupOnly, privateOnly bool, err error)

	// SetScope flips one wide scope: "global", "group" or "private"
	SetScope(ctx context.Context, scope string, enabled bool) error

	// IsChatEnabled reports whether the per-chat flag is set
	IsChatEnabled(ctx context.Context, chatID string) (bool, error)

	// SetChat flips the per-chat flag
	SetChat(ctx context.Context, chatID string, enabled bool) error
}

// PermissionRepository defines the per-chat moderation bypass lists
type PermissionRepository interface {
	// Permit adds a user to a policy's bypass list
	Permit(ctx context.Context, chatID, userID, policy string) error

	// Revoke removes a user from a policy's bypass list
	Revoke(ctx context.Context, chatID, userID, policy string) error

	// RevokeAll clears a policy's bypass list for a chat
	RevokeAll(ctx context.Context, chatID, policy string) error

	// IsPermitted reports whether a user is on a policy's bypass list
	IsPermitted(ctx context.Context, chatID, userID, policy string) (bool, error)
}

// ScheduleRepository defines access to persisted scheduled tasks
type ScheduleRepository interface {
	// Save stores a task
	Save(ctx context.Context, task *entities.ScheduledTask) error

	// Delete removes a task by id; missing rows are fine
	Delete(ctx context.Context, id string) error

	// DeleteReminder removes the reminder of a chat firing at the given
	// time of day and reports whether a row was removed
	DeleteReminder(ctx context.Context, chatID string, hour, minute int) (bool, error)

	// ListByChat returns all tasks of a chat
	ListByChat(ctx context.Context, chatID string) ([]entities.ScheduledTask, error)

	// ListEnabled returns every enabled task for startup rehydration
	ListEnabled(ctx context.Context) ([]entities.ScheduledTask, error)
}

// PollRepository defines access to the single active poll per chat
type PollRepository interface {
	// Get returns the chat's poll, or NotFound
	Get(ctx context.Context, chatID string) (*entities.Poll, error)

	// Create inserts a poll; a live poll already present is a Conflict
	Create(ctx context.Context, poll *entities.Poll) error

	// UpdateVotes replaces the vote tally JSON
	UpdateVotes(ctx context.Context, chatID, votes string) error

	// Delete removes the chat's poll
	Delete(ctx context.Context, chatID string) error
}

// CustomCommandRepository defines the store-registered command fallback
type CustomCommandRepository interface {
	// Get returns a custom command by name, or NotFound
	Get(ctx context.Context, name string) (*entities.CustomCommand, error)

	// Upsert registers or replaces a custom command
	Upsert(ctx context.Context, cmd *entities.CustomCommand) error

	// Delete removes a custom command; missing rows are fine
	Delete(ctx context.Context, name string) error
}
