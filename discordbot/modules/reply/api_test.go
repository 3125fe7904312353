package reply

import (
	"errors"
	"testing"

	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/bottest"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareReply(t *testing.T) {
	env := bottest.New(t, nil, New())

	env.Bot.Router.On("test", "fail", "", func(ctx *router.Context) error {
		return errors.New("Something went wrong.")
	})
	env.Bot.Router.On("test", "quiet", "", func(ctx *router.Context) error {
		return bot.ErrNoReply
	})
	env.Bot.Router.On("test", "ok", "", func(ctx *router.Context) error {
		return nil
	})

	env.Send("+fail")
	require.Equal(t, 1, env.Session.SentCount())
	assert.Equal(t, "Something went wrong.", env.Session.LastSent().Content)

	var logged bool

	for _, e := range env.Hook.AllEntries() {
		logged = logged || e.Message == "Executing command returned error"
	}

	assert.True(t, logged)

	env.Send("+quiet")
	env.Send("+ok")
	assert.Equal(t, 1, env.Session.SentCount())
}

func TestRoutingError(t *testing.T) {
	env := bottest.New(t, nil, New())

	env.Send("+missing")
	assert.Equal(t, `Command "missing" is not found`, env.Session.LastSent().Content)

	env.Send("+")
	assert.Equal(t, 1, env.Session.SentCount())
}
