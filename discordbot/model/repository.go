package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v7"
)

const taskGroup = "tasks"

// Repository provides methods to get and set configuration, enqueue and dequeue tasks
type Repository struct {
	Client *redis.Client
	groups map[string]bool
	lock   *sync.Mutex
}

// ConfigEntry is a single configuration key and value
type ConfigEntry struct {
	Key   string
	Value string
}

func configKey(guildID, scope, key string) string {
	return fmt.Sprintf("%s.%s.%s", guildID, scope, key)
}

func taskKey(task Task) string {
	return fmt.Sprintf("task.%s.%s", task.Scope(), task.Name())
}

// ConfigSet sets config value for given guild
func (repo *Repository) ConfigSet(guildID, scope, key, value string) error {
	return repo.Client.Set(configKey(guildID, scope, key), value, 0).Err()
}

// ConfigGet returns config value for given guild, empty string if not set
func (repo *Repository) ConfigGet(guildID, scope, key string) (s string, err error) {
	s, err = repo.Client.Get(configKey(guildID, scope, key)).Result()
	if err == redis.Nil {
		err = nil
	}

	return
}

// ConfigSetRaw sets guild config value by its dotted "scope.key" name
func (repo *Repository) ConfigSetRaw(guildID, name, value string) error {
	return repo.Client.Set(guildID+"."+name, value, 0).Err()
}

// ConfigGetRaw returns guild config value by its dotted "scope.key" name
func (repo *Repository) ConfigGetRaw(guildID, name string) (s string, err error) {
	s, err = repo.Client.Get(guildID + "." + name).Result()
	if err == redis.Nil {
		err = nil
	}

	return
}

// ConfigDel deletes guild config value by its dotted "scope.key" name
func (repo *Repository) ConfigDel(guildID, name string) error {
	return repo.Client.Del(guildID + "." + name).Err()
}

// ConfigList returns guild config entries matching mask, sorted by key
func (repo *Repository) ConfigList(guildID, mask string) ([]ConfigEntry, error) {
	prefix := guildID + "."

	keys, err := repo.Client.Keys(prefix + "*" + mask).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)

	entries := make([]ConfigEntry, 0, len(keys))

	for _, k := range keys {
		v, err := repo.Client.Get(k).Result()
		if err == redis.Nil {
			continue
		}

		if err != nil {
			return nil, err
		}

		entries = append(entries, ConfigEntry{
			Key:   strings.TrimPrefix(k, prefix),
			Value: v,
		})
	}

	return entries, nil
}

// TaskStats returns number of queued entries per task stream
func (repo *Repository) TaskStats() ([]ConfigEntry, error) {
	keys, err := repo.Client.Keys("task.*").Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)

	stats := make([]ConfigEntry, 0, len(keys))

	for _, k := range keys {
		n, err := repo.Client.XLen(k).Result()
		if err != nil {
			return nil, err
		}

		stats = append(stats, ConfigEntry{
			Key:   k,
			Value: strconv.FormatInt(n, 10),
		})
	}

	return stats, nil
}

// TaskEnqueue schedules task for execution after delay, dropping it if not executed within timeout
func (repo *Repository) TaskEnqueue(task Task, delay, timeout time.Duration) (id string, err error) {
	bs, err := json.Marshal(task)
	if err != nil {
		return "", err
	}

	due := time.Now().Add(delay)

	var expires int64

	if timeout > 0 {
		expires = due.Add(timeout).UnixNano()
	}

	return repo.Client.XAdd(&redis.XAddArgs{
		Stream: taskKey(task),
		Values: map[string]interface{}{
			"due":     due.UnixNano(),
			"expires": expires,
			"data":    bs,
		},
	}).Result()
}

func (repo *Repository) ensureGroup(fkey string) {
	repo.lock.Lock()
	defer repo.lock.Unlock()

	if _, ok := repo.groups[fkey]; !ok {
		repo.Client.XGroupCreateMkStream(fkey, taskGroup, "0")
		repo.groups[fkey] = true
	}
}

func parseNano(v interface{}) int64 {
	raw, ok := v.(string)
	if !ok {
		return 0
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// scan looks for first due entry, dropping expired ones; wait is time until next entry is due
func (repo *Repository) scan(fkey string, streams []redis.XStream, task Task) (id string, wait time.Duration, err error) {
	now := time.Now().UnixNano()
	wait = -1

	for _, s := range streams {
		for _, m := range s.Messages {
			due := parseNano(m.Values["due"])
			expires := parseNano(m.Values["expires"])

			if due > now {
				if d := time.Duration(due - now); wait < 0 || d < wait {
					wait = d
				}

				continue
			}

			bs, ok := m.Values["data"].(string)

			if (expires > 0 && expires < now) || !ok || json.Unmarshal([]byte(bs), task) != nil {
				err = repo.ack(fkey, m.ID)
				if err != nil {
					return "", 0, err
				}

				continue
			}

			return m.ID, 0, nil
		}
	}

	return "", wait, nil
}

func (repo *Repository) read(fkey, start string, block time.Duration) ([]redis.XStream, error) {
	res, err := repo.Client.XReadGroup(&redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: "dequeue",
		Streams:  []string{fkey, start},
		Block:    block,
	}).Result()
	if err == redis.Nil {
		err = nil
	}

	return res, err
}

// TaskDequeue retrieves next due task into given value, waiting at most block duration.
// Empty id means no task is due yet.
func (repo *Repository) TaskDequeue(task Task, block time.Duration) (id string, err error) {
	fkey := taskKey(task)

	repo.ensureGroup(fkey)

	pending, err := repo.read(fkey, "0", -1)
	if err != nil {
		return "", err
	}

	id, wait, err := repo.scan(fkey, pending, task)
	if err != nil || id != "" {
		return id, err
	}

	if wait >= 0 && wait < block {
		block = wait
	}

	if block <= 0 {
		block = time.Millisecond
	}

	fresh, err := repo.read(fkey, ">", block)
	if err != nil {
		return "", err
	}

	id, _, err = repo.scan(fkey, fresh, task)

	return id, err
}

func (repo *Repository) ack(fkey, id string) error {
	tx := repo.Client.TxPipeline()
	tx.XAck(fkey, taskGroup, id)
	tx.XDel(fkey, id)
	_, err := tx.Exec()

	return err
}

// TaskAck confirms task as successfully executed
func (repo *Repository) TaskAck(task Task, id string) error {
	return repo.ack(taskKey(task), id)
}
