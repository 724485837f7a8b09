package entities

import (
	"strings"
	"time"
)

// MediaKind classifies an attached media payload
type MediaKind string

const (
	MediaNone  MediaKind = ""
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MessageEvent is an inbound message as delivered by the connector
type MessageEvent struct {
	ChatID    string
	MessageID string
	Sender    string
	Text      string
	Media     MediaKind
	ViewOnce  bool
	// QuotedID and QuotedViewOnce describe the message this one replies to,
	// used by the explicit view-once repost command.
	QuotedID       string
	QuotedViewOnce bool
	Mentions       []string
	FromMe         bool
	Timestamp      time.Time
}

// HasText reports whether the message carries extractable text. Media-only
// messages without a caption have none and are never shadow-captured.
func (e *MessageEvent) HasText() bool {
	return strings.TrimSpace(e.Text) != ""
}

// IsGroup reports whether the event's chat is a group conversation
func (e *MessageEvent) IsGroup() bool {
	return IsGroupChat(e.ChatID)
}

// DeletionEvent reports a message revoked by Actor
type DeletionEvent struct {
	ChatID    string
	MessageID string
	Actor     string
}

// Membership actions delivered with a MembershipEvent
const (
	MembershipJoin   = "join"
	MembershipLeave  = "leave"
	MembershipRemove = "remove"
)

// MembershipEvent reports participants entering or leaving a group
type MembershipEvent struct {
	ChatID string
	Users  []string
	Action string
}

// Participant is one member of a group, as reported by group metadata
type Participant struct {
	ID      string
	IsAdmin bool
	IsSuper bool
}

// GroupMetadata is the connector's view of a group
type GroupMetadata struct {
	ChatID       string
	Subject      string
	Participants []Participant
}

// IsAdmin reports whether user holds admin or superadmin in the group
func (g *GroupMetadata) IsAdmin(user string) bool {
	for _, p := range g.Participants {
		if p.ID == user && (p.IsAdmin || p.IsSuper) {
			return true
		}
	}
	return false
}

// IsGroupChat reports whether a chat identifier addresses a group or
// broadcast conversation rather than a person-to-person one
func IsGroupChat(chatID string) bool {
	return strings.HasSuffix(chatID, "@g.us") || strings.HasSuffix(chatID, "@broadcast")
}
