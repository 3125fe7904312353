// Package bot provides main bot implementation
package bot

import (
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/config"
	"github.com/eientei/modbot/discordbot/model"
	"github.com/eientei/modbot/discordbot/router"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
)

// ErrNoReply special error value to avoid auto-reply
var ErrNoReply = errors.New("noreply")

// Options provide configuration options for bot
type Options struct {
	Discord *discordgo.Session
	Session router.Session
	Client  *redis.Client
	Config  *config.Root
	Log     *logrus.Logger
	Modules []Module
}

// Configuration store configuration for bot
type Configuration struct {
	Discord    *discordgo.Session
	Session    router.Session
	Client     *redis.Client
	Config     *config.Root
	Log        *logrus.Logger
	Router     *router.Router
	Repository *model.Repository
	Started    time.Time
	bot        *Bot
	Modules    []Module
	color      int
}

// Color returns embed color
func (conf *Configuration) Color() int {
	return conf.color
}

// Prefix returns command prefix for guild
func (conf *Configuration) Prefix(guildID string) string {
	return conf.bot.guild(guildID).getPrefix()
}

// HasPermission returns true if message author holds all of given permissions in message channel,
// administrators hold every permission
func (conf *Configuration) HasPermission(msg *discordgo.Message, permissions int64) bool {
	if permissions == 0 {
		return true
	}

	if msg.Author == nil || msg.GuildID == "" {
		return false
	}

	perms, err := conf.Session.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
	if err != nil {
		conf.Log.WithError(err).WithField("user", msg.Author.ID).Error("Loading channel permissions")

		return false
	}

	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}

	return perms&permissions == permissions
}

// Record notifies interested modules about taken moderation action
func (conf *Configuration) Record(action *Action) {
	if action.Time.IsZero() {
		action.Time = time.Now()
	}

	conf.Log.WithFields(logrus.Fields{
		"action":    action.Kind,
		"guild":     action.GuildID,
		"channel":   action.ChannelID,
		"moderator": action.ModeratorID,
		"target":    action.TargetID,
	}).Info("Moderation action")

	for _, m := range conf.bot.actionModules {
		m.ActionTaken(action)
	}
}

// Reload provides config reloading interface to modules
func (conf *Configuration) Reload() {
	conf.bot.Reload()
}

func (bot *Bot) configure(s *server, guild *discordgo.Guild) {
	prefix, err := bot.Repository.ConfigGet(guild.ID, "global", "prefix")
	if err != nil {
		bot.Log.WithError(err).Error("Getting server prefix", guild.ID)
	}

	if prefix == "" {
		if srv := bot.Config.Server(guild.ID); srv != nil {
			prefix = srv.Prefix
		}
	}

	s.setPrefix(prefix)
}

// Reload performs reload of all configuration values in configured modules
func (bot *Bot) Reload() {
	for _, guildID := range bot.guildIDs() {
		guild := &discordgo.Guild{ID: guildID}

		bot.ConfigureGuild(guild)
	}
}

// ConfigureGuild applies configuration for guild to bot and every module
func (bot *Bot) ConfigureGuild(guild *discordgo.Guild) {
	bot.configure(bot.guild(guild.ID), guild)

	for _, m := range bot.Modules {
		m.Configure(&bot.Configuration, guild)
	}
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Initialize(bot *Configuration) error
	Configure(bot *Configuration, server *discordgo.Guild)
	Shutdown(bot *Configuration)
}

// MessageFilter interface marks modules inspecting messages before command dispatch,
// returning true stops message processing
type MessageFilter interface {
	FilterMessage(session router.Session, msg *discordgo.Message) bool
}

// ActionModule interface marks modules interested in moderation actions
type ActionModule interface {
	ActionTaken(action *Action)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Session == nil && options.Discord != nil {
		options.Session = options.Discord
	}

	if options.Config == nil {
		options.Config = &config.Root{}
	}

	options.Config.SetDefaults()

	color, err := config.ParseColor(options.Config.Private.Color)
	if err != nil {
		return nil, err
	}

	var (
		filters       []MessageFilter
		actionModules []ActionModule
	)

	for _, m := range options.Modules {
		if f, ok := m.(MessageFilter); ok {
			filters = append(filters, f)
		}

		if am, ok := m.(ActionModule); ok {
			actionModules = append(actionModules, am)
		}
	}

	bot := &Bot{
		Configuration: Configuration{
			Discord:    options.Discord,
			Session:    options.Session,
			Client:     options.Client,
			Config:     options.Config,
			Log:        options.Log,
			Router:     router.NewRouter(),
			Repository: model.NewRepository(options.Client),
			Modules:    options.Modules,
			Started:    time.Now(),
			color:      color,
		},
		m:             &sync.RWMutex{},
		servers:       make(map[string]*server),
		filters:       filters,
		actionModules: actionModules,
	}

	bot.Configuration.bot = bot
	bot.Router.EmbedColor = color

	for _, m := range bot.Modules {
		err := m.Initialize(&bot.Configuration)
		if err != nil {
			return nil, err
		}
	}

	if bot.Discord != nil {
		bot.Discord.AddHandler(bot.handlerGuildCreate)
		bot.Discord.AddHandler(bot.handlerMessageCreate)
	}

	return bot, nil
}
