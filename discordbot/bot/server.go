package bot

import "sync"

type server struct {
	m        *sync.RWMutex
	prefix   string
	fallback string
}

func (srv *server) getPrefix() string {
	srv.m.RLock()
	defer srv.m.RUnlock()

	if srv.prefix == "" {
		return srv.fallback
	}

	return srv.prefix
}

func (srv *server) setPrefix(prefix string) {
	srv.m.Lock()
	srv.prefix = prefix
	srv.m.Unlock()
}

func (bot *Bot) guild(guildID string) *server {
	bot.m.RLock()
	s, ok := bot.servers[guildID]
	bot.m.RUnlock()

	if ok {
		return s
	}

	bot.m.Lock()
	defer bot.m.Unlock()

	if s, ok = bot.servers[guildID]; ok {
		return s
	}

	s = &server{
		m:        &sync.RWMutex{},
		fallback: bot.Config.Private.Prefix,
	}

	if srv := bot.Config.Server(guildID); srv != nil {
		s.prefix = srv.Prefix
	}

	bot.servers[guildID] = s

	return s
}

func (bot *Bot) guildIDs() (ids []string) {
	bot.m.RLock()
	defer bot.m.RUnlock()

	for id := range bot.servers {
		ids = append(ids, id)
	}

	return
}
