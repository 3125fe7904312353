// Package cleanup provides bot module for delayed removal of bot replies
package cleanup

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
)

const (
	// DefaultPoll is a default time worker waits for queued messages
	DefaultPoll = time.Second
	// Timeout is a time after which undeleted message is no longer retried
	Timeout = time.Minute
)

// New provides module instance
func New() bot.Module {
	return &module{
		poll: DefaultPoll,
	}
}

type module struct {
	config       *bot.Configuration
	cleanupDelay map[string]time.Duration
	m            sync.RWMutex
	poll         time.Duration
	stop         chan struct{}
	done         chan struct{}
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.cleanupDelay = make(map[string]time.Duration)
	mod.config = config
	mod.stop = make(chan struct{})
	mod.done = make(chan struct{})

	config.Router.AppendMiddleware(mod.middlewareCleanup)

	go mod.start()

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	s, err := config.Repository.ConfigGet(guild.ID, "cleanup", "delay")
	if err != nil {
		config.Log.WithError(err).Error("Getting cleanup delay")
		return
	}

	var delay time.Duration

	if s != "" {
		delay, err = parseDelay(s)
		if err != nil {
			config.Log.WithError(err).Error("Parsing delay value")
			return
		}
	}

	mod.m.Lock()
	mod.cleanupDelay[guild.ID] = delay
	mod.m.Unlock()
}

func (mod *module) Shutdown(*bot.Configuration) {
	select {
	case <-mod.stop:
		return
	default:
	}

	close(mod.stop)
	<-mod.done
}

// parseDelay accepts go duration or plain seconds
func parseDelay(s string) (time.Duration, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(v) * time.Second, nil
	}

	return time.ParseDuration(s)
}

func (mod *module) delay(guildID string) time.Duration {
	mod.m.RLock()
	defer mod.m.RUnlock()

	return mod.cleanupDelay[guildID]
}

// Schedule enqueues removal of given message after delay
func Schedule(config *bot.Configuration, msg *discordgo.Message, delay time.Duration) error {
	_, err := config.Repository.TaskEnqueue(&Task{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
	}, delay, Timeout)

	return err
}

func (mod *module) middlewareCleanup(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		origerr := handler(ctx)

		delay := mod.delay(ctx.Message.GuildID)
		if delay <= 0 {
			return origerr
		}

		for _, r := range ctx.Replies {
			err := Schedule(mod.config, r.Response, delay)
			if err != nil {
				mod.config.Log.WithError(err).WithField("response", r.Response.ID).Error("Enqueueing response cleanup")
			}
		}

		return origerr
	}
}
