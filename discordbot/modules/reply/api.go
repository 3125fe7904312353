// Package reply provides bot module relaying command errors back to the channel
package reply

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/sirupsen/logrus"
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

	config.Router.AppendMiddleware(mod.middlewareReply)
	config.Router.ErrorHandler = mod.routingError

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func (mod *module) routingError(session router.Session, msg *discordgo.Message, origerr error) {
	mod.config.Log.WithError(origerr).WithField("msg", msg.ID).Debug("Routing message")

	_, err := session.ChannelMessageSend(msg.ChannelID, origerr.Error())
	if err != nil {
		mod.config.Log.WithError(err).Error("Replying with routing error")
	}
}

func (mod *module) middlewareReply(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		origerr := handler(ctx)
		if origerr == nil || errors.Is(origerr, bot.ErrNoReply) {
			return nil
		}

		mod.config.Log.WithError(origerr).WithFields(logrus.Fields{
			"route": ctx.Route.Name,
			"msg":   ctx.Message.ID,
			"guild": ctx.Message.GuildID,
		}).Error("Executing command returned error")

		_, err := ctx.Reply(origerr.Error())
		if err != nil {
			mod.config.Log.WithError(err).Error("Replying with error status")
		}

		return origerr
	}
}
