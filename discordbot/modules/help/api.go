// Package help provides bot module for command help message
package help

import (
	"fmt"
	"strings"
	"time"

	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	config.Router.Group("general").SetDescription("General").
		On("help", "Shows this message or details about a command", mod.commandHelp).
		SetUsage("[command]")

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func groupTitle(g *router.Group) string {
	if g.Description != "" {
		return g.Description
	}

	return g.Name
}

func (mod *module) footer(msg *discordgo.Message) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text:    "Requested by " + msg.Author.String(),
		IconURL: msg.Author.AvatarURL(""),
	}
}

// Overview renders help embed listing every command message author may execute
func (mod *module) Overview(msg *discordgo.Message, prefix string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📘 Bot Commands Help",
		Description: fmt.Sprintf("Use `%shelp <command>` for more info on a command.", prefix),
		Color:       mod.config.Color(),
		Footer:      mod.footer(msg),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	for _, g := range mod.config.Router.Groups {
		var lines []string

		for _, r := range g.Routes {
			if !auth.Permitted(mod.config, msg, r) {
				continue
			}

			desc := r.Description
			if desc == "" {
				desc = "No description"
			}

			lines = append(lines, fmt.Sprintf("`%s` - %s", r.Signature(prefix), desc))
		}

		if len(lines) == 0 {
			continue
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  groupTitle(g),
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}

// Detail renders help embed for single command
func (mod *module) Detail(msg *discordgo.Message, prefix string, r *router.Route) *discordgo.MessageEmbed {
	desc := r.Description
	if desc == "" {
		desc = "No description provided."
	}

	embed := &discordgo.MessageEmbed{
		Title:       r.Signature(prefix),
		Description: desc,
		Color:       mod.config.Color(),
		Footer:      mod.footer(msg),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if len(r.Alias) > 0 && r.AliasHelp {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Aliases",
			Value: strings.Join(r.Alias, ", "),
		})
	}

	return embed
}

func (mod *module) commandHelp(ctx *router.Context) error {
	name := ctx.Args.Get(1)
	if name == "" {
		return ctx.ReplyEmbedCustom(mod.Overview(ctx.Message, ctx.Prefix))
	}

	r := mod.config.Router.Find(strings.TrimPrefix(name, ctx.Prefix))
	if r == nil {
		return fmt.Errorf("No command called \"%s\" found.", name)
	}

	return ctx.ReplyEmbedCustom(mod.Detail(ctx.Message, ctx.Prefix, r))
}
