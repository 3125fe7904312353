package moderation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/modules/cleanup"
	"github.com/eientei/modbot/discordbot/router"
)

const (
	defaultClear  = 5
	maxClear      = 100
	pageSize      = 100
	bulkMaxAge    = 14 * 24 * time.Hour
	clearNotice   = 3 * time.Second
	clearValidMsg = "amount must be a positive integer up to %d"
)

func clearAmount(arg string) (int, error) {
	if arg == "" {
		return defaultClear, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > maxClear {
		return 0, fmt.Errorf("%w: "+clearValidMsg, router.ErrInvalidArgument, maxClear)
	}

	return n, nil
}

// recent fetches up to n most recent channel messages, newest first
func recent(session router.Session, channelID string, n int) ([]*discordgo.Message, error) {
	var (
		res    []*discordgo.Message
		before string
	)

	for len(res) < n {
		limit := n - len(res)
		if limit > pageSize {
			limit = pageSize
		}

		page, err := session.ChannelMessages(channelID, limit, before, "", "")
		if err != nil {
			return nil, fmt.Errorf("fetching messages: %w", err)
		}

		res = append(res, page...)

		if len(page) < limit {
			break
		}

		before = page[len(page)-1].ID
	}

	return res, nil
}

// partition splits messages into bulk deletable and individually deletable ones
func partition(msgs []*discordgo.Message, now time.Time) (bulk, single []string) {
	for _, m := range msgs {
		ts, err := discordgo.SnowflakeTimestamp(m.ID)
		if err != nil || now.Sub(ts) >= bulkMaxAge {
			single = append(single, m.ID)

			continue
		}

		bulk = append(bulk, m.ID)
	}

	return
}

func (mod *module) remove(session router.Session, channelID string, msgs []*discordgo.Message) (deleted int, err error) {
	bulk, single := partition(msgs, time.Now())

	for len(bulk) > 0 {
		chunk := bulk
		if len(chunk) > pageSize {
			chunk = chunk[:pageSize]
		}

		bulk = bulk[len(chunk):]

		err = session.ChannelMessagesBulkDelete(channelID, chunk)
		if err != nil {
			return deleted, fmt.Errorf("deleting messages: %w", err)
		}

		deleted += len(chunk)
	}

	for _, id := range single {
		err = session.ChannelMessageDelete(channelID, id)
		if err != nil {
			return deleted, fmt.Errorf("deleting message: %w", err)
		}

		deleted++
	}

	return deleted, nil
}

func (mod *module) commandClear(ctx *router.Context) error {
	amount, err := clearAmount(ctx.Args.Get(1))
	if err != nil {
		return err
	}

	msgs, err := recent(ctx.Session, ctx.Message.ChannelID, amount+1)
	if err != nil {
		return err
	}

	deleted, err := mod.remove(ctx.Session, ctx.Message.ChannelID, msgs)
	if deleted > 0 {
		mod.record(ctx, bot.ActionClear, ctx.Message.ChannelID, "", strconv.Itoa(deleted))
	}

	if err != nil {
		return err
	}

	confirmed := deleted - 1
	if confirmed < 0 {
		confirmed = 0
	}

	msg, err := ctx.Reply(fmt.Sprintf("%d messages deleted!", confirmed))
	if err != nil {
		return err
	}

	err = cleanup.Schedule(mod.config, msg, clearNotice)
	if err != nil {
		mod.config.Log.WithError(err).WithField("msg", msg.ID).Error("Scheduling clear notice removal")
	}

	return nil
}
