package auth

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bottest"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAuth(t *testing.T) {
	env := bottest.New(t, nil, New())

	var calls int

	handler := func(ctx *router.Context) error {
		calls++

		return nil
	}

	env.Bot.Router.Group("restricted").
		Set(RouteConfigKey, &RouteConfig{Permissions: discordgo.PermissionBanMembers})
	env.Bot.Router.On("restricted", "ban", "", handler)
	env.Bot.Router.On("restricted", "open", "", handler).Set(RouteConfigKey, RouteConfig{})
	env.Bot.Router.On("public", "ping", "", handler)

	env.Session.Permissions[bottest.UserID] = discordgo.PermissionKickMembers

	assert.ErrorIs(t, env.Bot.Router.Dispatch(env.Session, "+", bottest.SelfID, env.Message(bottest.UserID, "+ban")),
		ErrNotAuthorized)
	assert.Zero(t, calls)

	assert.NoError(t, env.Bot.Router.Dispatch(env.Session, "+", bottest.SelfID, env.Message(bottest.UserID, "+open")))
	assert.NoError(t, env.Bot.Router.Dispatch(env.Session, "+", bottest.SelfID, env.Message(bottest.UserID, "+ping")))
	assert.NoError(t, env.Bot.Router.Dispatch(env.Session, "+", bottest.SelfID, env.Message(bottest.ModeratorID, "+ban")))
	assert.Equal(t, 3, calls)
}

func TestLookup(t *testing.T) {
	r := router.NewRouter()

	route := r.On("g", "cmd", "", nil)
	assert.Nil(t, Lookup(route))

	r.Group("g").Set(RouteConfigKey, RouteConfig{Permissions: discordgo.PermissionManageServer})
	assert.Equal(t, &RouteConfig{Permissions: discordgo.PermissionManageServer}, Lookup(route))

	route.Set(RouteConfigKey, &RouteConfig{Permissions: discordgo.PermissionAdministrator})
	assert.Equal(t, int64(discordgo.PermissionAdministrator), Lookup(route).Permissions)
}
