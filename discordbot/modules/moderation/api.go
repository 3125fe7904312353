// Package moderation provides bot module with member and channel moderation commands
package moderation

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/router"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoMember is returned when command requires member argument
	ErrNoMember = errors.New("Please mention a member.")
	// ErrMemberNotFound is returned when member argument could not be resolved
	ErrMemberNotFound = errors.New("Member not found.")
	// ErrChannelNotFound is returned when channel argument could not be resolved
	ErrChannelNotFound = errors.New("Channel not found.")
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	roles  singleflight.Group
}

func requires(perms int64) *auth.RouteConfig {
	return &auth.RouteConfig{
		Permissions: perms,
	}
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	group := config.Router.Group("moderation").SetDescription("Moderation")

	group.On("kick", "Kicks a member from the server", mod.commandKick).
		SetUsage("<member> [reason]").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionKickMembers))

	group.On("ban", "Bans a member from the server", mod.commandBan).
		SetUsage("<member> [reason]").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionBanMembers))

	group.On("mute", "Mutes a member", mod.commandMute).
		SetUsage("<member>").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionVoiceMuteMembers))

	group.On("unmute", "Unmutes a member", mod.commandUnmute).
		SetUsage("<member>").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionVoiceMuteMembers))

	group.On("lock", "Locks a channel", mod.commandLock).
		SetUsage("[channel]").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionManageChannels))

	group.On("unlock", "Unlocks a channel", mod.commandUnlock).
		SetUsage("[channel]").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionManageChannels))

	group.OnAlias("renew", "Clones the current channel and deletes the original", []string{"nuke"}, true, mod.commandRenew).
		Set(auth.RouteConfigKey, requires(discordgo.PermissionAdministrator))

	group.OnAlias("clear", "Deletes recent messages in the channel", []string{"purge"}, true, mod.commandClear).
		SetUsage("[amount]").
		Set(auth.RouteConfigKey, requires(discordgo.PermissionManageMessages))

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) member(ctx *router.Context, i int) (*discordgo.Member, error) {
	if ctx.Args.Get(i) == "" {
		return nil, ErrNoMember
	}

	id, ok := ctx.Args.UserID(i)
	if !ok {
		return nil, ErrMemberNotFound
	}

	member, err := ctx.Session.GuildMember(ctx.Message.GuildID, id)
	if err != nil {
		mod.config.Log.WithError(err).WithField("user", id).Debug("Resolving member")

		return nil, ErrMemberNotFound
	}

	if member.User == nil {
		member.User = &discordgo.User{ID: id}
	}

	return member, nil
}

func (mod *module) channel(ctx *router.Context, i int) (*discordgo.Channel, error) {
	id := ctx.Message.ChannelID

	if ctx.Args.Get(i) != "" {
		var ok bool

		id, ok = ctx.Args.ChannelID(i)
		if !ok {
			return nil, ErrChannelNotFound
		}
	}

	ch, err := ctx.Session.Channel(id)
	if err != nil || ch.GuildID != ctx.Message.GuildID {
		return nil, ErrChannelNotFound
	}

	return ch, nil
}

func (mod *module) record(ctx *router.Context, kind, channelID, targetID, reason string) {
	mod.config.Record(&bot.Action{
		Kind:        kind,
		GuildID:     ctx.Message.GuildID,
		ChannelID:   channelID,
		ModeratorID: ctx.Message.Author.ID,
		TargetID:    targetID,
		Reason:      reason,
	})
}
