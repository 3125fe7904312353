package bottest

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/config"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// Fixture identifiers
const (
	SelfID      = "1"
	GuildID     = "100"
	ChannelID   = "200"
	ModeratorID = "300"
	UserID      = "400"
)

// Env holds bot wired to in-memory session and redis
type Env struct {
	Bot     *bot.Bot
	Session *Session
	Redis   *miniredis.Miniredis
	Client  *redis.Client
	Hook    *test.Hook

	seq int
}

// New constructs bot with given modules over fresh session and redis, conf may be nil
func New(t *testing.T, conf *config.Root, modules ...bot.Module) *Env {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
	})

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	session := NewSession()
	session.Guilds[GuildID] = &discordgo.Guild{
		ID:      GuildID,
		Name:    "guild",
		OwnerID: ModeratorID,
	}
	session.AddChannel(&discordgo.Channel{
		ID:      ChannelID,
		GuildID: GuildID,
		Name:    "general",
		Type:    discordgo.ChannelTypeGuildText,
	})
	session.AddMember(GuildID, &discordgo.User{ID: ModeratorID, Username: "mod", Discriminator: "0"})
	session.AddMember(GuildID, &discordgo.User{ID: UserID, Username: "user", Discriminator: "0"})
	session.Permissions[ModeratorID] = discordgo.PermissionAdministrator

	b, err := bot.NewBot(bot.Options{
		Session: session,
		Client:  client,
		Config:  conf,
		Log:     log,
		Modules: modules,
	})
	require.NoError(t, err)

	t.Cleanup(b.Shutdown)

	b.ConfigureGuild(session.Guilds[GuildID])

	return &Env{
		Bot:     b,
		Session: session,
		Redis:   mr,
		Client:  client,
		Hook:    hook,
	}
}

// Message builds guild message from given author
func (env *Env) Message(authorID, content string) *discordgo.Message {
	env.seq++

	return &discordgo.Message{
		ID:        fmt.Sprintf("90%04d", env.seq),
		GuildID:   GuildID,
		ChannelID: ChannelID,
		Content:   content,
		Author: &discordgo.User{
			ID:            authorID,
			Username:      "u" + authorID,
			Discriminator: "0",
		},
	}
}

// Send handles message from moderator
func (env *Env) Send(content string) *discordgo.Message {
	return env.SendAs(ModeratorID, content)
}

// SendAs handles message from given author
func (env *Env) SendAs(authorID, content string) *discordgo.Message {
	msg := env.Message(authorID, content)

	env.Bot.HandleMessage(SelfID, msg)

	return msg
}
