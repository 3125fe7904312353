// Package model provides per-guild configuration and delayed task repository
package model

import (
	"sync"

	redis "github.com/go-redis/redis/v7"
)

// Task provides interface for persistable tasks
type Task interface {
	Scope() string
	Name() string
}

// NewRepository provides Repository instance
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		Client: client,
		groups: make(map[string]bool),
		lock:   &sync.Mutex{},
	}
}
