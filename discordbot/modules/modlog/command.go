package modlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/eientei/modbot/discordbot/router"
)

const (
	defaultRecent = 10
	maxRecent     = 25
)

var (
	// ErrNotConfigured is returned when guild has no modlog database
	ErrNotConfigured = errors.New("Moderation log is not configured for this server.")
)

func (mod *module) commandModlog(ctx *router.Context) error {
	limit := defaultRecent

	if arg := ctx.Args.Get(1); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > maxRecent {
			return fmt.Errorf("%w: amount must be a positive integer up to %d", router.ErrInvalidArgument, maxRecent)
		}

		limit = n
	}

	entries, err := mod.Recent(ctx.Message.GuildID, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return ctx.ReplyEmbed("No moderation actions recorded.")
	}

	buf := &strings.Builder{}

	for _, e := range entries {
		_, _ = fmt.Fprintf(buf, "`%s` **%s**", humanize.Time(e.CreatedAt), e.Kind)

		if e.TargetID != "" {
			_, _ = fmt.Fprintf(buf, " <@%s>", e.TargetID)
		}

		if e.ModeratorID != "" {
			_, _ = fmt.Fprintf(buf, " by <@%s>", e.ModeratorID)
		}

		if e.Reason != "" {
			_, _ = fmt.Fprintf(buf, ": %s", e.Reason)
		}

		buf.WriteString("\n")
	}

	return ctx.ReplyEmbed(strings.TrimSuffix(buf.String(), "\n"))
}
