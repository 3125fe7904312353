package bot

import (
	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) handlerMessageCreate(session *discordgo.Session, messageCreate *discordgo.MessageCreate) {
	bot.HandleMessage(session.State.User.ID, messageCreate.Message)
}

func (bot *Bot) handlerGuildCreate(_ *discordgo.Session, guildCreate *discordgo.GuildCreate) {
	bot.ConfigureGuild(guildCreate.Guild)
}

// HandleMessage passes message through filters and dispatches commands, selfID is bot user ID
func (bot *Bot) HandleMessage(selfID string, msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.ID == selfID {
		return
	}

	for _, f := range bot.filters {
		if f.FilterMessage(bot.Session, msg) {
			return
		}
	}

	err := bot.Router.Dispatch(bot.Session, bot.Prefix(msg.GuildID), selfID, msg)
	if err != nil {
		bot.Log.WithError(err).WithField("msg", msg.ID).Debug("Dispatching message")
	}
}
