package moderation

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
)

const noReason = "No reason provided"

// failed replies with user-facing description of rejected kick or ban, other errors are returned as is
func (mod *module) failed(ctx *router.Context, verb string, member *discordgo.Member, err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}

	mod.config.Log.WithError(err).WithField("user", member.User.ID).Errorf("Trying to %s", verb)

	text := fmt.Sprintf("Failed to %s the user.", verb)

	if rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
		text = fmt.Sprintf("I do not have permission to %s this user.", verb)
	}

	_, err = ctx.Reply(text)

	return err
}

func reasonText(reason string) string {
	if reason == "" {
		return noReason
	}

	return reason
}

func (mod *module) commandKick(ctx *router.Context) error {
	member, err := mod.member(ctx, 1)
	if err != nil {
		return err
	}

	reason := ctx.Rest(2)

	err = ctx.Session.GuildMemberDeleteWithReason(ctx.Message.GuildID, member.User.ID, reason)
	if err != nil {
		return mod.failed(ctx, "kick", member, err)
	}

	mod.record(ctx, bot.ActionKick, ctx.Message.ChannelID, member.User.ID, reason)

	return ctx.ReplyEmbed(fmt.Sprintf("✅ Kicked %s\nReason: %s", member.Mention(), reasonText(reason)))
}

func (mod *module) commandBan(ctx *router.Context) error {
	member, err := mod.member(ctx, 1)
	if err != nil {
		return err
	}

	reason := ctx.Rest(2)

	err = ctx.Session.GuildBanCreateWithReason(ctx.Message.GuildID, member.User.ID, reason, 0)
	if err != nil {
		return mod.failed(ctx, "ban", member, err)
	}

	mod.record(ctx, bot.ActionBan, ctx.Message.ChannelID, member.User.ID, reason)

	return ctx.ReplyEmbed(fmt.Sprintf("✅ Banned %s\nReason: %s", member.Mention(), reasonText(reason)))
}
