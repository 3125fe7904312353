// Package general provides bot module with informational commands
package general

import (
	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/modules/auth"
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

	group := config.Router.Group("general").SetDescription("General")

	group.On("ping", "Shows bot latency", mod.commandPing)

	group.On("say", "Repeats given message", mod.commandSay).
		SetUsage("<message>")

	group.OnAlias("avatar", "Shows member avatar", []string{"av"}, true, mod.commandAvatar).
		SetUsage("[member]")

	group.OnAlias("serverinfo", "Shows server information", []string{"si"}, true, mod.commandServerInfo)

	group.On("botinfo", "Shows bot information", mod.commandBotInfo)

	group.On("rules", "Shows server rules", mod.commandRules).
		Set(auth.RouteConfigKey, &auth.RouteConfig{Permissions: discordgo.PermissionManageServer})

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}
