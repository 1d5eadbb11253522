// Package memstore is the default storage backend: volatile in-memory maps
// with process lifetime. The relay loop is the only writer on the event path,
// but the snapshot API reads concurrently from HTTP handler goroutines, so
// each store guards its own state with a lock (no cross-store transactions
// exist, one lock per concern is enough).
package memstore

import (
	"sync"

	"github.com/banterhq/banter/internal/models"
)

type Store struct {
	chatsMu   sync.RWMutex
	chats     map[string]*models.Chat
	chatOrder []string

	messagesMu sync.RWMutex
	messages   map[string][]models.Message

	usersMu   sync.RWMutex
	users     map[string]*models.User
	userOrder []string
}

func New() *Store {
	return &Store{
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.Message),
		users:    make(map[string]*models.User),
	}
}
