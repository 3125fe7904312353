package moderation

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bottest"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/eientei/modbot/discordbot/modules/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T) (*bottest.Env, *module) {
	mod := New().(*module)

	return bottest.New(t, nil, reply.New(), auth.New(), mod), mod
}

func lastDescription(t *testing.T, env *bottest.Env) string {
	msg := env.Session.LastSent()
	require.NotNil(t, msg)
	require.Len(t, msg.Embeds, 1)

	return msg.Embeds[0].Description
}

func TestKick(t *testing.T) {
	env, _ := newEnv(t)

	env.Send("+kick <@400> spamming   links")

	assert.Equal(t, []string{bottest.UserID}, env.Session.Kicked)
	assert.Equal(t, "✅ Kicked <@!400>\nReason: spamming   links", lastDescription(t, env))
	assert.Equal(t, 0x3498db, env.Session.LastSent().Embeds[0].Color)

	env.Session.AddMember(bottest.GuildID, &discordgo.User{ID: bottest.UserID})

	env.Send("+kick 400")
	assert.Equal(t, "✅ Kicked <@!400>\nReason: No reason provided", lastDescription(t, env))
}

func TestKickFailures(t *testing.T) {
	env, _ := newEnv(t)

	env.Session.Fail["GuildMemberDeleteWithReason"] = &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
	}

	env.Send("+kick <@400>")
	assert.Equal(t, "I do not have permission to kick this user.", env.Session.LastSent().Content)

	env.Session.Fail["GuildBanCreateWithReason"] = &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusInternalServerError},
	}

	env.Send("+ban <@400> bye")
	assert.Equal(t, "Failed to ban the user.", env.Session.LastSent().Content)

	env.Session.Fail["GuildBanCreateWithReason"] = errors.New("connection reset")

	env.Send("+ban <@400> bye")
	assert.Equal(t, "connection reset", env.Session.LastSent().Content)

	assert.Empty(t, env.Session.Kicked)
	assert.Empty(t, env.Session.Banned)
}

func TestBan(t *testing.T) {
	env, _ := newEnv(t)

	env.Send("+ban <@!400> raid")

	assert.Equal(t, []string{bottest.UserID}, env.Session.Banned)
	assert.Equal(t, "✅ Banned <@!400>\nReason: raid", lastDescription(t, env))
}

func TestMemberArguments(t *testing.T) {
	env, _ := newEnv(t)

	env.Send("+kick")
	assert.Equal(t, ErrNoMember.Error(), env.Session.LastSent().Content)

	env.Send("+kick nobody")
	assert.Equal(t, ErrMemberNotFound.Error(), env.Session.LastSent().Content)

	env.Send("+kick <@999>")
	assert.Equal(t, ErrMemberNotFound.Error(), env.Session.LastSent().Content)
}

func TestNotAuthorized(t *testing.T) {
	env, _ := newEnv(t)

	env.SendAs(bottest.UserID, "+ban <@300>")

	assert.Equal(t, auth.ErrNotAuthorized.Error(), env.Session.LastSent().Content)
	assert.Empty(t, env.Session.Banned)
}

func TestMute(t *testing.T) {
	env, _ := newEnv(t)

	env.Session.AddChannel(&discordgo.Channel{ID: "201", GuildID: bottest.GuildID, Name: "voice"})

	env.Send("+mute <@400>")

	assert.Equal(t, "🔇 Muted <@!400>", lastDescription(t, env))
	require.Equal(t, 1, env.Session.RolesCreated)

	role := env.Session.Roles[bottest.GuildID][0]
	assert.Equal(t, "Muted", role.Name)
	assert.Zero(t, role.Permissions)

	require.Len(t, env.Session.Overwrites, 2)

	for _, o := range env.Session.Overwrites {
		assert.Equal(t, role.ID, o.TargetID)
		assert.Equal(t, int64(mutedDeny), o.Deny)
		assert.Zero(t, o.Allow)
	}

	member := env.Session.Members[bottest.GuildID+"/"+bottest.UserID]
	assert.Contains(t, member.Roles, role.ID)

	env.Send("+mute <@300>")

	assert.Equal(t, 1, env.Session.RolesCreated)
	assert.Len(t, env.Session.Overwrites, 2)
	assert.Contains(t, env.Session.Members[bottest.GuildID+"/"+bottest.ModeratorID].Roles, role.ID)
}

func TestMuteRoleConcurrent(t *testing.T) {
	env, mod := newEnv(t)

	wg := &sync.WaitGroup{}

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := mod.muteRole(env.Session, bottest.GuildID)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, env.Session.RolesCreated)
}

func TestUnmute(t *testing.T) {
	env, _ := newEnv(t)

	env.Send("+unmute <@400>")
	assert.Equal(t, "<@!400> is not muted.", env.Session.LastSent().Content)

	env.Send("+mute <@400>")
	env.Send("+unmute <@400>")

	assert.Equal(t, "🔈 Unmuted <@!400>", lastDescription(t, env))
	assert.Empty(t, env.Session.Members[bottest.GuildID+"/"+bottest.UserID].Roles)

	env.Send("+unmute <@400>")
	assert.Equal(t, "<@!400> is not muted.", env.Session.LastSent().Content)
}

func TestLock(t *testing.T) {
	env, _ := newEnv(t)

	env.Session.Channels[bottest.ChannelID].PermissionOverwrites = []*discordgo.PermissionOverwrite{
		{
			ID:    bottest.GuildID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionSendMessages | discordgo.PermissionAddReactions,
		},
	}

	env.Send("+lock")

	assert.Equal(t, "🔒 Locked <#200>", lastDescription(t, env))
	require.Len(t, env.Session.Overwrites, 1)
	assert.Equal(t, bottest.Overwrite{
		ChannelID: bottest.ChannelID,
		TargetID:  bottest.GuildID,
		Allow:     discordgo.PermissionAddReactions,
		Deny:      discordgo.PermissionSendMessages,
	}, env.Session.Overwrites[0])

	env.Send("+unlock <#200>")

	assert.Equal(t, "🔓 Unlocked <#200>", lastDescription(t, env))
	require.Len(t, env.Session.Overwrites, 2)
	assert.Equal(t, bottest.Overwrite{
		ChannelID: bottest.ChannelID,
		TargetID:  bottest.GuildID,
		Allow:     discordgo.PermissionSendMessages | discordgo.PermissionAddReactions,
	}, env.Session.Overwrites[1])

	env.Send("+lock <#999>")
	assert.Equal(t, ErrChannelNotFound.Error(), env.Session.LastSent().Content)
}

func TestRenew(t *testing.T) {
	env, _ := newEnv(t)

	env.Session.Channels[bottest.ChannelID].Topic = "chat"

	env.Send("+nuke")

	_, ok := env.Session.Channels[bottest.ChannelID]
	assert.False(t, ok)

	msg := env.Session.LastSent()
	require.NotNil(t, msg)
	require.NotEqual(t, bottest.ChannelID, msg.ChannelID)
	assert.Equal(t, "Channel has been nuked and renewed!", lastDescription(t, env))

	ch := env.Session.Channels[msg.ChannelID]
	require.NotNil(t, ch)
	assert.Equal(t, "general", ch.Name)
	assert.Equal(t, "chat", ch.Topic)
	assert.Equal(t, 1, env.Session.SentCount())
}

func history(env *bottest.Env, n int, at time.Time) []*discordgo.Message {
	var msgs []*discordgo.Message

	for i := 0; i < n; i++ {
		msgs = append(msgs, &discordgo.Message{
			ID:        bottest.Snowflake(at.Add(-time.Duration(i)*time.Minute), i),
			ChannelID: bottest.ChannelID,
		})
	}

	env.Session.AddMessages(bottest.ChannelID, msgs...)

	return msgs
}

func TestClear(t *testing.T) {
	env, _ := newEnv(t)

	history(env, 10, time.Now())

	env.Send("+clear 5")

	assert.Equal(t, 6, env.Session.DeletedCount())
	require.Len(t, env.Session.BulkDeleted, 1)
	assert.Len(t, env.Session.Messages[bottest.ChannelID], 4)
	assert.Equal(t, "5 messages deleted!", env.Session.LastSent().Content)

	stats, err := env.Bot.Repository.TaskStats()
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "1", stats[0].Value)
}

func TestClearDefaultAndShortHistory(t *testing.T) {
	env, _ := newEnv(t)

	history(env, 3, time.Now())

	env.Send("+purge")

	assert.Equal(t, 3, env.Session.DeletedCount())
	assert.Equal(t, "2 messages deleted!", env.Session.LastSent().Content)
}

func TestClearOld(t *testing.T) {
	env, _ := newEnv(t)

	msgs := history(env, 2, time.Now())
	old := history(env, 2, time.Now().Add(-30*24*time.Hour))

	env.Send("+clear 3")

	require.Len(t, env.Session.BulkDeleted, 1)
	assert.Equal(t, []string{msgs[0].ID, msgs[1].ID}, env.Session.BulkDeleted[0])
	assert.Equal(t, []string{old[0].ID, old[1].ID}, env.Session.Deleted)
	assert.Equal(t, "3 messages deleted!", env.Session.LastSent().Content)
}

func TestClearInvalid(t *testing.T) {
	env, _ := newEnv(t)

	for _, arg := range []string{"abc", "0", "-3", "101"} {
		env.Send("+clear " + arg)
		assert.Equal(t, "invalid argument: amount must be a positive integer up to 100", env.Session.LastSent().Content)
	}

	assert.Zero(t, env.Session.DeletedCount())
}
