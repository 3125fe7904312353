// Package filter provides bot module removing messages containing banned words
package filter

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
	words  []string
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	for _, w := range config.Config.Private.BannedWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			mod.words = append(mod.words, w)
		}
	}

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

// Match returns first banned word contained in content, case-insensitive
func (mod *module) Match(content string) (string, bool) {
	lower := strings.ToLower(content)

	for _, w := range mod.words {
		if strings.Contains(lower, w) {
			return w, true
		}
	}

	return "", false
}

func (mod *module) FilterMessage(session router.Session, msg *discordgo.Message) bool {
	word, ok := mod.Match(msg.Content)
	if !ok {
		return false
	}

	log := mod.config.Log.WithField("msg", msg.ID).WithField("channel", msg.ChannelID)

	err := session.ChannelMessageDelete(msg.ChannelID, msg.ID)
	if err != nil {
		log.WithError(err).Error("Deleting filtered message")
	}

	_, err = session.ChannelMessageSend(msg.ChannelID, msg.Author.Mention()+", that word is not allowed!")
	if err != nil {
		log.WithError(err).Error("Sending filter warning")
	}

	mod.config.Record(&bot.Action{
		Kind:      bot.ActionFilter,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		TargetID:  msg.Author.ID,
		Reason:    word,
	})

	return true
}
