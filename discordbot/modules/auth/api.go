// Package auth provides bot module middleware for authorization on bot commands
package auth

import (
	"errors"

	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// RouteConfigKey is used in route/group data configuration
const RouteConfigKey = "auth"

var (
	// ErrNotAuthorized is returned when user is not authorized to execute this command
	ErrNotAuthorized = errors.New("You do not have permission to use this command.")
)

// RouteConfig holds authorization requirements for given route or route group
type RouteConfig struct {
	Permissions int64
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.AppendMiddleware(mod.middlewareAuth)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

// Lookup returns route authorization requirements, nil if route is unrestricted
func Lookup(route *router.Route) *RouteConfig {
	switch v := route.Get(RouteConfigKey).(type) {
	case *RouteConfig:
		return v
	case RouteConfig:
		return &v
	default:
		return nil
	}
}

// Permitted returns true if message author may execute given route
func Permitted(config *bot.Configuration, msg *discordgo.Message, route *router.Route) bool {
	auth := Lookup(route)
	if auth == nil {
		return true
	}

	return config.HasPermission(msg, auth.Permissions)
}

func (mod *module) middlewareAuth(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		if Permitted(mod.config, ctx.Message, ctx.Route) {
			return handler(ctx)
		}

		return ErrNotAuthorized
	}
}
