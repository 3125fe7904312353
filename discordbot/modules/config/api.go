// Package config provides bot module for managing per-server configuration
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/model"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/router"
)

var (
	// ErrInvalidArgumentNumber is retuned when invalid number of arguments is supplied
	ErrInvalidArgumentNumber = fmt.Errorf("%w: invalid argument number", router.ErrInvalidArgument)
	// ErrInvalidKey is returned when key is not in <scope>.<key> form
	ErrInvalidKey = errors.New("Config key must be in <scope>.<key> form.")
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

	group := config.Router.Group("config").SetDescription("Configuration")
	group.Set(auth.RouteConfigKey, &auth.RouteConfig{
		Permissions: discordgo.PermissionAdministrator,
	})

	group.On("config.get", "Gets config value", mod.configGet).SetUsage("<scope.key>")
	group.On("config.set", "Sets config value", mod.configSet).SetUsage("<scope.key> <value>")
	group.On("config.del", "Deletes config value", mod.configDel).SetUsage("<scope.key>")
	group.On("config.list", "Lists config values", mod.configList).SetUsage("[mask]")
	group.On("config.tasks", "Lists queued task counts", mod.configTasks)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func key(ctx *router.Context) (string, error) {
	k := ctx.Args.Get(1)

	idx := strings.Index(k, ".")
	if idx <= 0 || idx == len(k)-1 {
		return "", ErrInvalidKey
	}

	return k, nil
}

func (mod *module) configGet(ctx *router.Context) error {
	if len(ctx.Args) < 2 {
		return ErrInvalidArgumentNumber
	}

	k, err := key(ctx)
	if err != nil {
		return err
	}

	value, err := mod.config.Repository.ConfigGetRaw(ctx.Message.GuildID, k)
	if err != nil {
		return err
	}

	return ctx.ReplyEmbed("```\n" + value + "```")
}

func (mod *module) configSet(ctx *router.Context) error {
	if len(ctx.Args) < 3 {
		return ErrInvalidArgumentNumber
	}

	k, err := key(ctx)
	if err != nil {
		return err
	}

	err = mod.config.Repository.ConfigSetRaw(ctx.Message.GuildID, k, ctx.Args.Join(2))
	if err != nil {
		return err
	}

	mod.config.Reload()

	return ctx.ReplyEmbed("✅ Set `" + k + "`")
}

func (mod *module) configDel(ctx *router.Context) error {
	if len(ctx.Args) < 2 {
		return ErrInvalidArgumentNumber
	}

	k, err := key(ctx)
	if err != nil {
		return err
	}

	err = mod.config.Repository.ConfigDel(ctx.Message.GuildID, k)
	if err != nil {
		return err
	}

	mod.config.Reload()

	return ctx.ReplyEmbed("✅ Deleted `" + k + "`")
}

func render(entries []model.ConfigEntry) string {
	max := 0

	for _, e := range entries {
		if len(e.Key) > max {
			max = len(e.Key)
		}
	}

	buf := &strings.Builder{}

	buf.WriteString("```\n")

	for _, e := range entries {
		_, _ = buf.WriteString(strings.Repeat(" ", max-len(e.Key)))
		_, _ = buf.WriteString(e.Key)
		_, _ = buf.WriteString(": ")
		_, _ = buf.WriteString(e.Value)
		_, _ = buf.WriteString("\n")
	}

	buf.WriteString("```")

	return buf.String()
}

func (mod *module) configList(ctx *router.Context) error {
	entries, err := mod.config.Repository.ConfigList(ctx.Message.GuildID, ctx.Args.Get(1))
	if err != nil {
		return err
	}

	return ctx.ReplyEmbed(render(entries))
}

func (mod *module) configTasks(ctx *router.Context) error {
	entries, err := mod.config.Repository.TaskStats()
	if err != nil {
		return err
	}

	return ctx.ReplyEmbed(render(entries))
}
