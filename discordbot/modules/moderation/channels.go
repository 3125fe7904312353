package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
)

const renewReason = "Channel nuked by renew command"

// everyone returns current @everyone overwrite of channel, role ID of @everyone equals guild ID
func everyone(ch *discordgo.Channel) (allow, deny int64) {
	for _, o := range ch.PermissionOverwrites {
		if o.ID == ch.GuildID && o.Type == discordgo.PermissionOverwriteTypeRole {
			return o.Allow, o.Deny
		}
	}

	return 0, 0
}

func (mod *module) setSend(ctx *router.Context, locked bool) (*discordgo.Channel, error) {
	ch, err := mod.channel(ctx, 1)
	if err != nil {
		return nil, err
	}

	allow, deny := everyone(ch)

	if locked {
		allow &^= discordgo.PermissionSendMessages
		deny |= discordgo.PermissionSendMessages
	} else {
		allow |= discordgo.PermissionSendMessages
		deny &^= discordgo.PermissionSendMessages
	}

	err = ctx.Session.ChannelPermissionSet(ch.ID, ch.GuildID, discordgo.PermissionOverwriteTypeRole, allow, deny)
	if err != nil {
		return nil, fmt.Errorf("updating channel permissions: %w", err)
	}

	return ch, nil
}

func (mod *module) commandLock(ctx *router.Context) error {
	ch, err := mod.setSend(ctx, true)
	if err != nil {
		return err
	}

	mod.record(ctx, bot.ActionLock, ch.ID, "", "")

	return ctx.ReplyEmbed("🔒 Locked " + ch.Mention())
}

func (mod *module) commandUnlock(ctx *router.Context) error {
	ch, err := mod.setSend(ctx, false)
	if err != nil {
		return err
	}

	mod.record(ctx, bot.ActionUnlock, ch.ID, "", "")

	return ctx.ReplyEmbed("🔓 Unlocked " + ch.Mention())
}

func (mod *module) commandRenew(ctx *router.Context) error {
	old, err := ctx.Session.Channel(ctx.Message.ChannelID)
	if err != nil {
		return fmt.Errorf("loading channel: %w", err)
	}

	ch, err := ctx.Session.GuildChannelCreateComplex(old.GuildID, discordgo.GuildChannelCreateData{
		Name:                 old.Name,
		Type:                 old.Type,
		Topic:                old.Topic,
		Bitrate:              old.Bitrate,
		UserLimit:            old.UserLimit,
		RateLimitPerUser:     old.RateLimitPerUser,
		Position:             old.Position,
		PermissionOverwrites: old.PermissionOverwrites,
		ParentID:             old.ParentID,
		NSFW:                 old.NSFW,
	}, discordgo.WithAuditLogReason(renewReason))
	if err != nil {
		return fmt.Errorf("cloning channel: %w", err)
	}

	_, err = ctx.Session.ChannelDelete(old.ID, discordgo.WithAuditLogReason(renewReason))
	if err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}

	mod.record(ctx, bot.ActionRenew, ch.ID, "", "#"+old.Name)

	_, err = ctx.Session.ChannelMessageSendEmbed(ch.ID, &discordgo.MessageEmbed{
		Description: "Channel has been nuked and renewed!",
		Color:       mod.config.Color(),
	})
	if err != nil {
		return err
	}

	return bot.ErrNoReply
}
