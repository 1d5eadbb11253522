package store

import (
	"errors"
	"time"

	"github.com/banterhq/banter/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ChatStore owns chat entities and their membership.
type ChatStore interface {
	// ListChatsForUser returns every chat whose member set contains userID.
	// Ordering is stable for equal input state; callers apply their own sort.
	ListChatsForUser(userID string) ([]models.Chat, error)

	// FindPersonalChat returns the personal chat whose member set is exactly
	// {userA, userB}, or ErrNotFound.
	FindPersonalChat(userA, userB string) (*models.Chat, error)

	// CreatePersonalChat is idempotent per user pair: if the chat already
	// exists it is returned alongside ErrAlreadyExists, which callers treat
	// as a resolution rather than a failure.
	CreatePersonalChat(userA, userB string) (*models.Chat, error)

	// CreateGroupChat creates a group with members memberIDs followed by
	// adminID (deduplicated) and adminIDs = {adminID}. Returns
	// ErrInvalidArgument on an empty name or member list. Groups are never
	// deduplicated; every call creates a new chat.
	CreateGroupChat(name string, memberIDs []string, adminID string) (*models.Chat, error)

	GetChat(chatID string) (*models.Chat, error)

	// RecordActivity refreshes the chat's last-message cache. Unknown chat
	// ids are a silent no-op.
	RecordActivity(chatID, content string, at time.Time) error
}

// MessageStore owns the append-only, strictly ordered history per chat.
type MessageStore interface {
	// Append adds msg to the end of the chat's sequence, creating the
	// sequence if absent. It never fails on an unknown chat.
	Append(chatID string, msg models.Message) error

	// ListMessages returns the full ordered history, empty if none.
	ListMessages(chatID string) ([]models.Message, error)
}

type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	SearchUsers(query string) ([]models.User, error)
}

// Store is the full storage surface wired into the server.
type Store interface {
	ChatStore
	MessageStore
	UserStore
}
