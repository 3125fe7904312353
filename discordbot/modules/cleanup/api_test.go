package cleanup

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bottest"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/modules/reply"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deleted(session *bottest.Session, id string) func() bool {
	return func() bool {
		return session.IsDeleted(id)
	}
}

func TestSchedule(t *testing.T) {
	mod := New().(*module)
	mod.poll = 50 * time.Millisecond

	env := bottest.New(t, nil, mod)

	msg := &discordgo.Message{
		ID:        "555",
		GuildID:   bottest.GuildID,
		ChannelID: bottest.ChannelID,
	}

	require.NoError(t, Schedule(&env.Bot.Configuration, msg, 100*time.Millisecond))

	assert.Eventually(t, deleted(env.Session, "555"), 3*time.Second, 20*time.Millisecond)
}

func TestMiddlewareCleanup(t *testing.T) {
	mod := New().(*module)
	mod.poll = 50 * time.Millisecond

	env := bottest.New(t, nil, mod)

	env.Bot.Router.On("test", "echo", "", func(ctx *router.Context) error {
		_, err := ctx.Reply("echo")

		return err
	})

	require.NoError(t, env.Bot.Repository.ConfigSet(bottest.GuildID, "cleanup", "delay", "100ms"))
	env.Bot.Reload()

	env.Send("+echo")

	reply := env.Session.LastSent()
	require.NotNil(t, reply)
	assert.Equal(t, "echo", reply.Content)

	assert.Eventually(t, deleted(env.Session, reply.ID), 3*time.Second, 20*time.Millisecond)
}

func TestParseDelay(t *testing.T) {
	d, err := parseDelay("5")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = parseDelay("1m")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = parseDelay("soon")
	assert.Error(t, err)
}

func TestMiddlewareCleanupErrorReplies(t *testing.T) {
	mod := New().(*module)
	mod.poll = 50 * time.Millisecond

	env := bottest.New(t, nil, mod, reply.New(), auth.New())

	env.Bot.Router.Group("restricted").
		Set(auth.RouteConfigKey, &auth.RouteConfig{Permissions: discordgo.PermissionBanMembers})
	env.Bot.Router.On("restricted", "ban", "", func(ctx *router.Context) error {
		return nil
	})

	require.NoError(t, env.Bot.Repository.ConfigSet(bottest.GuildID, "cleanup", "delay", "100ms"))
	env.Bot.Reload()

	env.SendAs(bottest.UserID, "+ban")

	resp := env.Session.LastSent()
	require.NotNil(t, resp)
	assert.Equal(t, auth.ErrNotAuthorized.Error(), resp.Content)

	assert.Eventually(t, deleted(env.Session, resp.ID), 3*time.Second, 20*time.Millisecond)
}
