package general

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/eientei/modbot/discordbot/router"
)

func (mod *module) embed(title, desc string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: desc,
		Color:       mod.config.Color(),
	}
}

// requested adds requesting author footer and timestamp
func requested(ctx *router.Context, embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	embed.Timestamp = time.Now().Format(time.RFC3339)
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text:    "Requested by " + ctx.Message.Author.String(),
		IconURL: ctx.Message.Author.AvatarURL(""),
	}

	return embed
}

func (mod *module) commandPing(ctx *router.Context) error {
	latency := ctx.Session.HeartbeatLatency()

	return ctx.ReplyEmbedCustom(requested(ctx, mod.embed("🏓 Pong!", fmt.Sprintf("Latency: %dms", latency.Milliseconds()))))
}

func (mod *module) commandSay(ctx *router.Context) error {
	text := ctx.Rest(1)
	if text == "" {
		_, err := ctx.Reply("Please provide a message to say.")

		return err
	}

	err := ctx.Session.ChannelMessageDelete(ctx.Message.ChannelID, ctx.Message.ID)
	if err != nil {
		mod.config.Log.WithError(err).WithField("msg", ctx.Message.ID).Error("Deleting say invocation")
	}

	return ctx.ReplyEmbedCustom(mod.embed("", text))
}

func displayName(member *discordgo.Member) string {
	if name := member.DisplayName(); name != "" {
		return name
	}

	return member.User.Username
}

func (mod *module) commandAvatar(ctx *router.Context) error {
	id := ctx.Message.Author.ID

	if ctx.Args.Get(1) != "" {
		var ok bool

		id, ok = ctx.Args.UserID(1)
		if !ok {
			return fmt.Errorf("%w: %s is not a member", router.ErrInvalidArgument, ctx.Args.Get(1))
		}
	}

	var name, url string

	member, err := ctx.Session.GuildMember(ctx.Message.GuildID, id)

	switch {
	case err == nil && member.User != nil:
		name, url = displayName(member), member.AvatarURL("1024")
	case id == ctx.Message.Author.ID:
		name, url = ctx.Message.Author.Username, ctx.Message.Author.AvatarURL("1024")
	default:
		return fmt.Errorf("%w: member %s not found", router.ErrInvalidArgument, id)
	}

	embed := mod.embed(name+"'s Avatar", "")
	embed.Image = &discordgo.MessageEmbedImage{
		URL: url,
	}

	return ctx.ReplyEmbedCustom(requested(ctx, embed))
}

func countChannels(channels []*discordgo.Channel) (text, voice int) {
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			voice++
		}
	}

	return
}

func field(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: true,
	}
}

func owner(guild *discordgo.Guild) string {
	if guild.OwnerID == "" {
		return "Unknown"
	}

	return "<@" + guild.OwnerID + ">"
}

func (mod *module) commandServerInfo(ctx *router.Context) error {
	guild, err := ctx.Session.GuildWithCounts(ctx.Message.GuildID)
	if err != nil {
		return fmt.Errorf("loading server: %w", err)
	}

	channels, err := ctx.Session.GuildChannels(ctx.Message.GuildID)
	if err != nil {
		return fmt.Errorf("loading channels: %w", err)
	}

	members := guild.ApproximateMemberCount
	if members == 0 {
		members = guild.MemberCount
	}

	text, voice := countChannels(channels)

	created := "Unknown"

	if ts, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		created = ts.UTC().Format("Jan 02, 2006")
	}

	embed := mod.embed("🌐 "+guild.Name+" Server Info", "Detailed server information.")
	embed.Fields = []*discordgo.MessageEmbedField{
		field("Server ID", guild.ID),
		field("Owner", owner(guild)),
		field("Created On", created),
		field("Members", humanize.Comma(int64(members))),
		field("Channels", fmt.Sprintf("%d Text | %d Voice", text, voice)),
	}

	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: guild.IconURL("256"),
		}
	}

	return ctx.ReplyEmbedCustom(requested(ctx, embed))
}

func (mod *module) commandBotInfo(ctx *router.Context) error {
	uptime := strings.TrimSpace(humanize.RelTime(mod.config.Started, time.Now(), "", ""))

	embed := mod.embed("🤖 Bot Info", "A moderation bot for Discord servers.")
	embed.Fields = []*discordgo.MessageEmbedField{
		field("Library", "discordgo "+discordgo.VERSION),
		field("Prefix", ctx.Prefix),
		field("Commands", strconv.Itoa(len(mod.config.Router.Routes))),
		field("Uptime", uptime),
	}

	return ctx.ReplyEmbedCustom(requested(ctx, embed))
}

func (mod *module) commandRules(ctx *router.Context) error {
	embed := mod.embed("📜 Server Rules", "")

	for i, r := range mod.config.Config.Private.Rules {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Rule " + strconv.Itoa(i+1),
			Value: r,
		})
	}

	return ctx.ReplyEmbedCustom(requested(ctx, embed))
}
