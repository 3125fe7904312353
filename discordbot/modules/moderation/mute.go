package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
)

const mutedDeny = discordgo.PermissionSendMessages | discordgo.PermissionVoiceSpeak | discordgo.PermissionAddReactions

func (mod *module) findRole(session router.Session, guildID string) (*discordgo.Role, error) {
	roles, err := session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}

	for _, r := range roles {
		if r.Name == mod.config.Config.Private.MuteRole {
			return r, nil
		}
	}

	return nil, nil
}

func (mod *module) createRole(session router.Session, guildID string) (*discordgo.Role, error) {
	var perms int64

	role, err := session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        mod.config.Config.Private.MuteRole,
		Permissions: &perms,
	})
	if err != nil {
		return nil, fmt.Errorf("creating mute role: %w", err)
	}

	channels, err := session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}

	for _, ch := range channels {
		err = session.ChannelPermissionSet(ch.ID, role.ID, discordgo.PermissionOverwriteTypeRole, 0, mutedDeny)
		if err != nil {
			mod.config.Log.WithError(err).WithField("channel", ch.ID).Error("Denying muted role permissions")
		}
	}

	return role, nil
}

// muteRole returns mute role, creating it once per guild if absent
func (mod *module) muteRole(session router.Session, guildID string) (*discordgo.Role, error) {
	v, err, _ := mod.roles.Do(guildID, func() (interface{}, error) {
		role, err := mod.findRole(session, guildID)
		if err != nil || role != nil {
			return role, err
		}

		return mod.createRole(session, guildID)
	})
	if err != nil {
		return nil, err
	}

	return v.(*discordgo.Role), nil
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}

	return false
}

func (mod *module) commandMute(ctx *router.Context) error {
	member, err := mod.member(ctx, 1)
	if err != nil {
		return err
	}

	role, err := mod.muteRole(ctx.Session, ctx.Message.GuildID)
	if err != nil {
		return err
	}

	err = ctx.Session.GuildMemberRoleAdd(ctx.Message.GuildID, member.User.ID, role.ID)
	if err != nil {
		return fmt.Errorf("adding mute role: %w", err)
	}

	mod.record(ctx, bot.ActionMute, ctx.Message.ChannelID, member.User.ID, "")

	return ctx.ReplyEmbed("🔇 Muted " + member.Mention())
}

func (mod *module) commandUnmute(ctx *router.Context) error {
	member, err := mod.member(ctx, 1)
	if err != nil {
		return err
	}

	role, err := mod.findRole(ctx.Session, ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if role == nil || !hasRole(member, role.ID) {
		_, err = ctx.Reply(member.Mention() + " is not muted.")

		return err
	}

	err = ctx.Session.GuildMemberRoleRemove(ctx.Message.GuildID, member.User.ID, role.ID)
	if err != nil {
		return fmt.Errorf("removing mute role: %w", err)
	}

	mod.record(ctx, bot.ActionUnmute, ctx.Message.ChannelID, member.User.ID, "")

	return ctx.ReplyEmbed("🔈 Unmuted " + member.Mention())
}
