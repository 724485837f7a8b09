// Package entities contains domain entities
package entities

import "time"

// GroupSettings holds the per-chat feature flags and texts. Rows are created
// implicitly on first write and only ever toggled, never hard-deleted.
type GroupSettings struct {
	ChatID            string    `json:"chatId" gorm:"primaryKey;column:chat_id"`
	BotEnabled        bool      `json:"botEnabled" gorm:"column:bot_enabled;default:true"`
	AntiLinkEnabled   bool      `json:"antilinkEnabled" gorm:"column:antilink_enabled"`
	AntiSalesEnabled  bool      `json:"antisalesEnabled" gorm:"column:antisales_enabled"`
	PermitAdminBypass bool      `json:"permitAdminBypass" gorm:"column:permit_admin_bypass"`
	WelcomeEnabled    bool      `json:"welcomeEnabled" gorm:"column:welcome_enabled"`
	WelcomeText       string    `json:"welcomeText" gorm:"column:welcome_text"`
	GoodbyeEnabled    bool      `json:"goodbyeEnabled" gorm:"column:goodbye_enabled"`
	Language          string    `json:"language" gorm:"column:language"`
	Rules             string    `json:"rules" gorm:"column:rules"`
	UpdatedAt         time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// WarningRecord tracks moderation warnings per (chat, user, reason) bucket.
// Count is monotonic within the bucket and the record is deleted once the
// threshold kick has fired.
type WarningRecord struct {
	ChatID    string    `json:"chatId" gorm:"primaryKey;column:chat_id"`
	UserID    string    `json:"userId" gorm:"primaryKey;column:user_id"`
	Reason    string    `json:"reason" gorm:"primaryKey;column:reason"`
	Count     int       `json:"count" gorm:"column:count"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// CachedMessage is the durable shadow copy of a message body, kept so a
// deletion can be answered with a restore reply.
type CachedMessage struct {
	ChatID     string    `json:"chatId" gorm:"primaryKey;column:chat_id"`
	MessageID  string    `json:"messageId" gorm:"primaryKey;column:message_id"`
	Sender     string    `json:"sender" gorm:"column:sender"`
	Body       string    `json:"body" gorm:"column:body"`
	CapturedAt time.Time `json:"capturedAt" gorm:"column:captured_at"`
}

// AntiDeleteSettings is the singleton scope row for the anti-delete feature.
// Scope precedence when deciding whether a chat is protected:
// global, then group-wide, then private-wide, then per-chat.
type AntiDeleteSettings struct {
	ID          uint `json:"id" gorm:"primaryKey;column:id"`
	Global      bool `json:"global" gorm:"column:global_enabled"`
	GroupOnly   bool `json:"groupOnly" gorm:"column:group_only"`
	PrivateOnly bool `json:"privateOnly" gorm:"column:private_only"`
}

// AntiDeleteChat marks a single chat as anti-delete protected
type AntiDeleteChat struct {
	ChatID string `json:"chatId" gorm:"primaryKey;column:chat_id"`
}

// ViewOnceSettings controls view-once capture per chat, with the same
// wide scopes as anti-delete
type ViewOnceSettings struct {
	ID          uint `json:"id" gorm:"primaryKey;column:id"`
	Global      bool `json:"global" gorm:"column:global_enabled"`
	GroupOnly   bool `json:"groupOnly" gorm:"column:group_only"`
	PrivateOnly bool `json:"privateOnly" gorm:"column:private_only"`
}

// ViewOnceChat marks a single chat as view-once capturing
type ViewOnceChat struct {
	ChatID string `json:"chatId" gorm:"primaryKey;column:chat_id"`
}

// PermittedUser grants a user a bypass for one moderation policy in one chat
type PermittedUser struct {
	ChatID string `json:"chatId" gorm:"primaryKey;column:chat_id"`
	UserID string `json:"userId" gorm:"primaryKey;column:user_id"`
	Policy string `json:"policy" gorm:"primaryKey;column:policy"`
}

// Task kinds understood by the schedule registry
const (
	TaskKindMessage  = "message"
	TaskKindReminder = "reminder"
)

// ScheduledTask is a persisted one-shot or recurring send. Announce interval
// timers are deliberately not represented here: they are in-memory only and
// do not survive a restart.
type ScheduledTask struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	ChatID    string    `json:"chatId" gorm:"column:chat_id;index"`
	Kind      string    `json:"kind" gorm:"column:kind"`
	Payload   string    `json:"payload" gorm:"column:payload"`
	FireAt    time.Time `json:"fireAt" gorm:"column:fire_at"`
	CronSpec  string    `json:"cronSpec" gorm:"column:cron_spec"`
	Recurring bool      `json:"recurring" gorm:"column:recurring"`
	Enabled   bool      `json:"enabled" gorm:"column:enabled"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

// Poll is the single active poll of a chat. Options and tallies are stored
// as JSON, mirroring the record layout of the settings store.
type Poll struct {
	ChatID    string    `json:"chatId" gorm:"primaryKey;column:chat_id"`
	Question  string    `json:"question" gorm:"column:question"`
	Options   string    `json:"options" gorm:"column:options"`
	Votes     string    `json:"votes" gorm:"column:votes"`
	Creator   string    `json:"creator" gorm:"column:creator"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

// CustomCommand is a store-registered command used as dispatch fallback
type CustomCommand struct {
	Name     string `json:"name" gorm:"primaryKey;column:name"`
	Response string `json:"response" gorm:"column:response"`
	Tier     string `json:"tier" gorm:"column:tier"`
}

// BotConfig is the singleton mutable process configuration: the command
// prefix takes effect on the very next message after a change.
type BotConfig struct {
	ID     uint   `json:"id" gorm:"primaryKey;column:id"`
	Prefix string `json:"prefix" gorm:"column:prefix"`
}
