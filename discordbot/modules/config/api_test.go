package config

import (
	"testing"
	"time"

	"github.com/eientei/modbot/discordbot/bottest"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/modules/reply"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTask struct{}

func (testTask) Scope() string {
	return "test"
}

func (testTask) Name() string {
	return "noop"
}

func newEnv(t *testing.T) *bottest.Env {
	env := bottest.New(t, nil, reply.New(), auth.New(), New())

	env.Bot.Router.On("test", "echo", "", func(ctx *router.Context) error {
		_, err := ctx.Reply("echo")

		return err
	})

	return env
}

func lastDescription(t *testing.T, env *bottest.Env) string {
	msg := env.Session.LastSent()
	require.NotNil(t, msg)
	require.Len(t, msg.Embeds, 1)

	return msg.Embeds[0].Description
}

func TestConfigPrefix(t *testing.T) {
	env := newEnv(t)

	env.Send("+config.set global.prefix !")
	assert.Equal(t, "✅ Set `global.prefix`", lastDescription(t, env))
	assert.Equal(t, "!", env.Bot.Prefix(bottest.GuildID))

	env.Send("!echo")
	assert.Equal(t, "echo", env.Session.LastSent().Content)

	env.Send("!config.get global.prefix")
	assert.Equal(t, "```\n!```", lastDescription(t, env))

	env.Send("!config.list")
	assert.Equal(t, "```\nglobal.prefix: !\n```", lastDescription(t, env))

	env.Send("!config.del global.prefix")
	assert.Equal(t, "+", env.Bot.Prefix(bottest.GuildID))
}

func TestConfigArguments(t *testing.T) {
	env := newEnv(t)

	env.Send("+config.set prefix")
	assert.Equal(t, ErrInvalidArgumentNumber.Error(), env.Session.LastSent().Content)

	env.Send("+config.set prefix !")
	assert.Equal(t, ErrInvalidKey.Error(), env.Session.LastSent().Content)

	env.SendAs(bottest.UserID, "+config.set global.prefix !")
	assert.Equal(t, auth.ErrNotAuthorized.Error(), env.Session.LastSent().Content)
	assert.Equal(t, "+", env.Bot.Prefix(bottest.GuildID))
}

func TestConfigTasks(t *testing.T) {
	env := newEnv(t)

	_, err := env.Bot.Repository.TaskEnqueue(testTask{}, time.Hour, 0)
	require.NoError(t, err)

	env.Send("+config.tasks")
	assert.Equal(t, "```\ntask.test.noop: 1\n```", lastDescription(t, env))
}
