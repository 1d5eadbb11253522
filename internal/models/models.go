package models

import "time"

type ChatKind string

const (
	ChatPersonal ChatKind = "personal"
	ChatGroup    ChatKind = "group"
)

type MessageKind string

const (
	MessageText   MessageKind = "message"
	MessageSystem MessageKind = "system"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Chat is a conversation. LastMessage/LastMessageTime/UnreadCount are a
// denormalized cache of the latest activity, refreshed on every send.
type Chat struct {
	ID              string    `json:"id"`
	Type            ChatKind  `json:"type"`
	Name            string    `json:"name,omitempty"`
	Members         []string  `json:"members"`
	AdminIDs        []string  `json:"adminIds,omitempty"`
	LastMessage     string    `json:"lastMessage,omitempty"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

// Message is immutable once stored.
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       MessageKind `json:"type"`
	ChatID     string      `json:"chatId"`
}
