package router

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "10",
		ChannelID: "20",
		GuildID:   "30",
		Content:   content,
		Author:    &discordgo.User{ID: "40"},
	}
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs(`kick  <@1> "bad behaviour" again`)
	require.NoError(t, err)
	assert.Equal(t, Args{"kick", "<@1>", "bad behaviour", "again"}, args)

	args, err = ParseArgs(`say he said "hi"`)
	require.NoError(t, err)
	assert.Equal(t, "say", args.Get(0))
	assert.Equal(t, "", args.Get(10))

	args, err = ParseArgs("")
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestArgsMentions(t *testing.T) {
	args := Args{"kick", "<@!123>", "<@456>", "789", "<#555>", "nope"}

	id, ok := args.UserID(1)
	assert.True(t, ok)
	assert.Equal(t, "123", id)

	id, ok = args.UserID(2)
	assert.True(t, ok)
	assert.Equal(t, "456", id)

	id, ok = args.UserID(3)
	assert.True(t, ok)
	assert.Equal(t, "789", id)

	id, ok = args.ChannelID(4)
	assert.True(t, ok)
	assert.Equal(t, "555", id)

	_, ok = args.UserID(5)
	assert.False(t, ok)

	_, ok = args.ChannelID(9)
	assert.False(t, ok)

	assert.Equal(t, "<@456> 789", Args{"a", "<@456>", "789"}.Join(1))
	assert.Equal(t, "", args.Join(42))
}

func TestRest(t *testing.T) {
	assert.Equal(t, "being rude\nrepeatedly", Rest("kick <@1>  being rude\nrepeatedly", 2))
	assert.Equal(t, "", Rest("kick <@1>", 2))
	assert.Equal(t, "hello", Rest("  say hello ", 1))
}

func TestDispatch(t *testing.T) {
	r := NewRouter()

	var called []string

	r.Group("general").OnAlias("avatar", "shows avatar", []string{"av"}, true, func(ctx *Context) error {
		called = append(called, ctx.Route.Name+":"+ctx.Args.Get(1))
		return nil
	})

	var routingErrs []error

	r.ErrorHandler = func(session Session, msg *discordgo.Message, err error) {
		routingErrs = append(routingErrs, err)
	}

	require.NoError(t, r.Dispatch(nil, "+", "bot", message("+avatar me")))
	require.NoError(t, r.Dispatch(nil, "+", "bot", message("+av you")))
	require.NoError(t, r.Dispatch(nil, "+", "bot", message("avatar plain text")))
	assert.Equal(t, []string{"avatar:me", "avatar:you"}, called)

	self := message("+avatar")
	self.Author.ID = "bot"
	require.NoError(t, r.Dispatch(nil, "+", "bot", self))
	assert.Len(t, called, 2)

	err := r.Dispatch(nil, "+", "bot", message("+unknown"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMatched))
	assert.Equal(t, `Command "unknown" is not found`, err.Error())
	assert.Len(t, routingErrs, 1)
}

func TestMiddlewareOrder(t *testing.T) {
	r := NewRouter()

	var trace []string

	mw := func(name string) MiddlewareFunc {
		return func(handler HandlerFunc) HandlerFunc {
			return func(ctx *Context) error {
				trace = append(trace, name)
				return handler(ctx)
			}
		}
	}

	r.AppendMiddleware(mw("second"))
	r.PrependMiddleware(mw("first"))

	group := r.Group("moderation")
	group.Middleware = append(group.Middleware, mw("group"))

	route := group.On("kick", "kicks", func(ctx *Context) error {
		trace = append(trace, "handler")
		return nil
	})
	route.Middleware = append(route.Middleware, mw("route"))

	require.NoError(t, r.Dispatch(nil, "!", "bot", message("!kick")))
	assert.Equal(t, []string{"first", "second", "group", "route", "handler"}, trace)
}

func TestGroupsSorted(t *testing.T) {
	r := NewRouter()

	noop := func(*Context) error { return nil }

	r.On("moderation", "kick", "", noop)
	r.On("general", "say", "", noop)
	r.On("general", "ping", "", noop).SetUsage("")
	r.On("general", "avatar", "", noop).SetUsage("[member]")

	require.Len(t, r.Groups, 2)
	assert.Equal(t, "general", r.Groups[0].Name)
	assert.Equal(t, "moderation", r.Groups[1].Name)

	var names []string
	for _, route := range r.Groups[0].Routes {
		names = append(names, route.Name)
	}

	assert.Equal(t, []string{"avatar", "ping", "say"}, names)
	assert.Equal(t, "+avatar [member]", r.Find("avatar").Signature("+"))
	assert.Equal(t, "+ping", r.Find("ping").Signature("+"))
	assert.Nil(t, r.Find("ban"))
}

func TestRouteDataInheritance(t *testing.T) {
	r := NewRouter()
	group := r.Group("moderation").Set("auth", 42)
	route := group.On("kick", "", func(*Context) error { return nil })

	assert.Equal(t, 42, route.Get("auth"))

	route.Set("auth", 7)
	assert.Equal(t, 7, route.Get("auth"))
	assert.Nil(t, route.Get("missing"))
}

type embedSession struct {
	Session
	embeds []*discordgo.MessageEmbed
}

func (s *embedSession) ChannelMessageSendEmbed(
	_ string,
	embed *discordgo.MessageEmbed,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.embeds = append(s.embeds, embed)

	return &discordgo.Message{ID: "99"}, nil
}

func TestReplyEmbedColor(t *testing.T) {
	r := NewRouter()
	r.EmbedColor = 0xff0000

	r.On("general", "lock", "locks", func(ctx *Context) error {
		return ctx.ReplyEmbed("locked")
	})

	session := &embedSession{}

	require.NoError(t, r.Dispatch(session, "+", "bot", message("+lock")))
	require.Len(t, session.embeds, 1)
	assert.Equal(t, "locked", session.embeds[0].Description)
	assert.Equal(t, 0xff0000, session.embeds[0].Color)
}
