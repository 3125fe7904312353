// Package modlog provides bot module persisting moderation actions to postgres
package modlog

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/modules/auth"
	"github.com/jmoiron/sqlx"

	// postgres driver
	_ "github.com/lib/pq"
)

const queryTimeout = 5 * time.Second

const schema = `create table if not exists modlog (
	id bigserial primary key,
	created_at timestamptz not null,
	kind text not null,
	guild_id text not null,
	channel_id text not null,
	moderator_id text not null,
	target_id text not null,
	reason text not null
)`

const insertEntry = `insert into modlog (created_at, kind, guild_id, channel_id, moderator_id, target_id, reason)
values (:created_at, :kind, :guild_id, :channel_id, :moderator_id, :target_id, :reason)`

const selectEntries = `select created_at, kind, guild_id, channel_id, moderator_id, target_id, reason
from modlog where guild_id = $1 order by created_at desc limit $2`

// Entry is a persisted moderation action
type Entry struct {
	CreatedAt   time.Time `db:"created_at"`
	Kind        string    `db:"kind"`
	GuildID     string    `db:"guild_id"`
	ChannelID   string    `db:"channel_id"`
	ModeratorID string    `db:"moderator_id"`
	TargetID    string    `db:"target_id"`
	Reason      string    `db:"reason"`
}

// OpenFunc connects to database with given DSN
type OpenFunc func(dsn string) (*sqlx.DB, error)

// New provides module instance
func New() bot.Module {
	return NewWithOpen(func(dsn string) (*sqlx.DB, error) {
		return sqlx.Open("postgres", dsn)
	})
}

// NewWithOpen provides module instance using given database opener
func NewWithOpen(open OpenFunc) bot.Module {
	return &module{
		open:   open,
		dbs:    make(map[string]*sqlx.DB),
		guilds: make(map[string]*sqlx.DB),
	}
}

type module struct {
	config *bot.Configuration
	open   OpenFunc
	m      sync.RWMutex
	dbs    map[string]*sqlx.DB
	guilds map[string]*sqlx.DB
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	config.Router.Group("moderation").
		On("modlog", "Shows recent moderation actions", mod.commandModlog).
		SetUsage("[amount]").
		Set(auth.RouteConfigKey, &auth.RouteConfig{Permissions: discordgo.PermissionManageServer})

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	srv := config.Config.Server(guild.ID)
	if srv == nil || srv.ModLog == "" {
		return
	}

	mod.m.Lock()
	defer mod.m.Unlock()

	if _, ok := mod.guilds[guild.ID]; ok {
		return
	}

	db, ok := mod.dbs[srv.ModLog]
	if !ok {
		var err error

		db, err = mod.connect(srv.ModLog)
		if err != nil {
			config.Log.WithError(err).WithField("guild", guild.ID).Error("Connecting to modlog database")

			return
		}

		mod.dbs[srv.ModLog] = db
	}

	mod.guilds[guild.ID] = db
}

func (mod *module) connect(dsn string) (*sqlx.DB, error) {
	db, err := mod.open(dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

func (mod *module) Shutdown(config *bot.Configuration) {
	mod.m.Lock()
	defer mod.m.Unlock()

	for dsn, db := range mod.dbs {
		err := db.Close()
		if err != nil {
			config.Log.WithError(err).Debug("Closing modlog database")
		}

		delete(mod.dbs, dsn)
	}

	mod.guilds = make(map[string]*sqlx.DB)
}

func (mod *module) db(guildID string) *sqlx.DB {
	mod.m.RLock()
	defer mod.m.RUnlock()

	return mod.guilds[guildID]
}

func (mod *module) ActionTaken(action *bot.Action) {
	db := mod.db(action.GuildID)
	if db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := db.NamedExecContext(ctx, insertEntry, &Entry{
		CreatedAt:   action.Time,
		Kind:        action.Kind,
		GuildID:     action.GuildID,
		ChannelID:   action.ChannelID,
		ModeratorID: action.ModeratorID,
		TargetID:    action.TargetID,
		Reason:      action.Reason,
	})
	if err != nil {
		mod.config.Log.WithError(err).WithField("action", action.Kind).Error("Persisting moderation action")
	}
}

// Recent returns most recent guild entries, newest first
func (mod *module) Recent(guildID string, limit int) ([]Entry, error) {
	db := mod.db(guildID)
	if db == nil {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var entries []Entry

	err := db.SelectContext(ctx, &entries, selectEntries, guildID, limit)

	return entries, err
}
