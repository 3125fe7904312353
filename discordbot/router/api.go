// Package router provides command router
package router

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the part of discord API used by command handlers, satisfied by *discordgo.Session
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(
		channelID string,
		limit int,
		beforeID, afterID, aroundID string,
		options ...discordgo.RequestOption,
	) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelPermissionSet(
		channelID, targetID string,
		targetType discordgo.PermissionOverwriteType,
		allow, deny int64,
		options ...discordgo.RequestOption,
	) error
	GuildWithCounts(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(
		guildID string,
		data discordgo.GuildChannelCreateData,
		options ...discordgo.RequestOption,
	) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, options ...discordgo.RequestOption) (int64, error)
	HeartbeatLatency() time.Duration
}

// Args provide abstraction for getting arguments
type Args []string

// Get returns bound-safe argument by index
func (args Args) Get(i int) string {
	if len(args) <= i {
		return ""
	}

	return args[i]
}

// Join joins arguments starting with given index
func (args Args) Join(i int) string {
	if len(args) <= i {
		return ""
	}

	return strings.Join(args[i:], " ")
}

// UserID returns user ID from mention or raw ID argument
func (args Args) UserID(i int) (string, bool) {
	s := args.Get(i)

	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(s[2:], ">"), "!")
	}

	return s, isSnowflake(s)
}

// ChannelID returns channel ID from mention or raw ID argument
func (args Args) ChannelID(i int) (string, bool) {
	s := args.Get(i)

	if strings.HasPrefix(s, "<#") && strings.HasSuffix(s, ">") {
		s = s[2 : len(s)-1]
	}

	return s, isSnowflake(s)
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Rest returns raw text after first n whitespace separated tokens
func Rest(raw string, n int) string {
	const spaces = " \t\r\n"

	s := strings.TrimLeft(raw, spaces)

	for i := 0; i < n; i++ {
		idx := strings.IndexAny(s, spaces)
		if idx < 0 {
			return ""
		}

		s = strings.TrimLeft(s[idx:], spaces)
	}

	return strings.TrimSpace(s)
}

// GroupSorterFunc provides sorting for groups
type GroupSorterFunc func(a, b *Group) bool

// RouteSorterFunc provides sorting for routes
type RouteSorterFunc func(a, b *Route) bool

// MatcherFunc implements matching command name
type MatcherFunc func(name string) bool

// MiddlewareFunc implements command wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements command execution
type HandlerFunc func(ctx *Context) error

// ErrorHandlerFunc receives errors happened before any route was matched
type ErrorHandlerFunc func(session Session, msg *discordgo.Message, err error)

// Context simplifies request handling
type Context struct {
	Session Session
	Message *discordgo.Message
	Route   *Route
	Args    Args
	Prefix  string
	Raw     string
	Replies map[string]*Reply
}

// Reply keeps track of user requests and bot replies
type Reply struct {
	Request  *discordgo.Message
	Response *discordgo.Message
}

// Rest returns raw command text after first n tokens, counting command name as first
func (ctx *Context) Rest(n int) string {
	return Rest(ctx.Raw, n)
}

func (ctx *Context) track(msg *discordgo.Message) {
	if ctx.Replies == nil {
		ctx.Replies = make(map[string]*Reply)
	}

	ctx.Replies[msg.ID] = &Reply{
		Request:  ctx.Message,
		Response: msg,
	}
}

// ReplyEmbed replies to original message with embed
func (ctx *Context) ReplyEmbed(desc string) (err error) {
	return ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
		Description: desc,
		Color:       ctx.Route.Router.EmbedColor,
	})
}

// ReplyEmbedCustom replies to original message with custom embed
func (ctx *Context) ReplyEmbedCustom(embed *discordgo.MessageEmbed) (err error) {
	var msg *discordgo.Message

	msg, err = ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed)
	if err != nil {
		return
	}

	ctx.track(msg)

	return
}

// Reply replies to original message
func (ctx *Context) Reply(desc string) (msg *discordgo.Message, err error) {
	msg, err = ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, desc)
	if err != nil {
		return
	}

	ctx.track(msg)

	return
}

// NewRouter returns new router instance
func NewRouter() *Router {
	return &Router{
		Routes: make(map[string]*Route),
		GroupSorter: func(a, b *Group) bool {
			return a.Name >= b.Name
		},
		DefaultRouteSorter: func(a, b *Route) bool {
			return a.Name >= b.Name
		},
	}
}

// Route describes command route
type Route struct {
	Router      *Router
	Name        string
	Usage       string
	Description string
	Matcher     MatcherFunc
	Handler     HandlerFunc
	Data        map[string]interface{}
	Middleware  []MiddlewareFunc
	Groups      []*Group
	Alias       []string
	AliasHelp   bool

	baked HandlerFunc
	once  sync.Once
}

// Set sets route config value
func (route *Route) Set(k string, v interface{}) *Route {
	route.Data[k] = v

	return route
}

// SetUsage sets parameter signature shown in help
func (route *Route) SetUsage(usage string) *Route {
	route.Usage = usage

	return route
}

// Get returns route (or any of parent groups) config value
func (route *Route) Get(k string) interface{} {
	if v, ok := route.Data[k]; ok {
		return v
	}

	for _, g := range route.Groups {
		if v, ok := g.Data[k]; ok {
			return v
		}
	}

	return nil
}

// Signature returns invocation signature with given prefix
func (route *Route) Signature(prefix string) string {
	if route.Usage == "" {
		return prefix + route.Name
	}

	return prefix + route.Name + " " + route.Usage
}

func (route *Route) handler() HandlerFunc {
	route.once.Do(func() {
		var middlewares []MiddlewareFunc

		middlewares = append(middlewares, route.Router.Middleware...)

		for _, g := range route.Groups {
			middlewares = append(middlewares, g.Middleware...)
		}

		middlewares = append(middlewares, route.Middleware...)

		route.baked = route.Handler
		for i := len(middlewares) - 1; i >= 0; i-- {
			route.baked = middlewares[i](route.baked)
		}
	})

	return route.baked
}
