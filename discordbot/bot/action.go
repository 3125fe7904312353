package bot

import "time"

// Moderation action kinds
const (
	ActionKick   = "kick"
	ActionBan    = "ban"
	ActionMute   = "mute"
	ActionUnmute = "unmute"
	ActionLock   = "lock"
	ActionUnlock = "unlock"
	ActionRenew  = "renew"
	ActionClear  = "clear"
	ActionFilter = "filter"
)

// Action describes moderation action taken by bot
type Action struct {
	Time        time.Time
	Kind        string
	GuildID     string
	ChannelID   string
	ModeratorID string
	TargetID    string
	Reason      string
}
