package cleanup

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/model"
)

// Task provides message removal delayed task
type Task struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// Scope returns task scope
func (Task) Scope() string {
	return "cleanup"
}

// Name returns task name
func (Task) Name() string {
	return "message"
}

// ackTask confirms finished task, returning false if removal should be retried later
func (mod *module) ackTask(task model.Task, id string, err error) bool {
	if err != nil {
		var rest *discordgo.RESTError

		if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			err = nil
		} else {
			mod.config.Log.WithError(err).WithField("id", id).Error("Removing message")

			return false
		}
	}

	err = mod.config.Repository.TaskAck(task, id)
	if err != nil {
		mod.config.Log.WithError(err).WithField("id", id).Error("Acking task")
	}

	return true
}

func (mod *module) sleep() bool {
	select {
	case <-mod.stop:
		return false
	case <-time.After(mod.poll):
		return true
	}
}

func (mod *module) start() {
	defer close(mod.done)

	task := &Task{}

	for {
		select {
		case <-mod.stop:
			return
		default:
		}

		id, err := mod.config.Repository.TaskDequeue(task, mod.poll)
		if err != nil {
			mod.config.Log.WithError(err).Error("Dequeuing")

			if !mod.sleep() {
				return
			}

			continue
		}

		if id == "" {
			continue
		}

		err = mod.config.Session.ChannelMessageDelete(task.ChannelID, task.MessageID)
		if !mod.ackTask(task, id, err) && !mod.sleep() {
			return
		}
	}
}
