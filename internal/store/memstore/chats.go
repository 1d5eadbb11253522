package memstore

import (
	"fmt"
	"slices"
	"time"

	"github.com/banterhq/banter/internal/ids"
	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

func (s *Store) ListChatsForUser(userID string) ([]models.Chat, error) {
	s.chatsMu.RLock()
	defer s.chatsMu.RUnlock()

	var chats []models.Chat
	for _, id := range s.chatOrder {
		chat := s.chats[id]
		if slices.Contains(chat.Members, userID) {
			chats = append(chats, cloneChat(chat))
		}
	}
	return chats, nil
}

func (s *Store) FindPersonalChat(userA, userB string) (*models.Chat, error) {
	s.chatsMu.RLock()
	defer s.chatsMu.RUnlock()

	if chat := s.findPersonal(userA, userB); chat != nil {
		c := cloneChat(chat)
		return &c, nil
	}
	return nil, fmt.Errorf("personal chat for %s and %s: %w", userA, userB, store.ErrNotFound)
}

func (s *Store) CreatePersonalChat(userA, userB string) (*models.Chat, error) {
	s.chatsMu.Lock()
	defer s.chatsMu.Unlock()

	if existing := s.findPersonal(userA, userB); existing != nil {
		c := cloneChat(existing)
		return &c, store.ErrAlreadyExists
	}

	chat := &models.Chat{
		ID:              ids.NewChatID(),
		Type:            models.ChatPersonal,
		Members:         []string{userA, userB},
		LastMessageTime: time.Now(),
	}
	s.insert(chat)

	c := cloneChat(chat)
	return &c, nil
}

func (s *Store) CreateGroupChat(name string, memberIDs []string, adminID string) (*models.Chat, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required: %w", store.ErrInvalidArgument)
	}
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("group needs at least one member: %w", store.ErrInvalidArgument)
	}

	members := slices.Clone(memberIDs)
	if !slices.Contains(members, adminID) {
		members = append(members, adminID)
	}

	chat := &models.Chat{
		ID:              ids.NewGroupID(),
		Type:            models.ChatGroup,
		Name:            name,
		Members:         members,
		AdminIDs:        []string{adminID},
		LastMessage:     "Group created",
		LastMessageTime: time.Now(),
	}

	s.chatsMu.Lock()
	s.insert(chat)
	s.chatsMu.Unlock()

	c := cloneChat(chat)
	return &c, nil
}

func (s *Store) GetChat(chatID string) (*models.Chat, error) {
	s.chatsMu.RLock()
	defer s.chatsMu.RUnlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, store.ErrNotFound)
	}
	c := cloneChat(chat)
	return &c, nil
}

func (s *Store) RecordActivity(chatID, content string, at time.Time) error {
	s.chatsMu.Lock()
	defer s.chatsMu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		// A send to a nonexistent chat must not fail the relay.
		return nil
	}
	chat.LastMessage = content
	chat.LastMessageTime = at
	chat.UnreadCount = 1
	return nil
}

// findPersonal assumes the chats lock is held.
func (s *Store) findPersonal(userA, userB string) *models.Chat {
	for _, id := range s.chatOrder {
		chat := s.chats[id]
		if chat.Type != models.ChatPersonal {
			continue
		}
		if slices.Contains(chat.Members, userA) && slices.Contains(chat.Members, userB) {
			return chat
		}
	}
	return nil
}

// insert assumes the chats lock is held.
func (s *Store) insert(chat *models.Chat) {
	s.chats[chat.ID] = chat
	s.chatOrder = append(s.chatOrder, chat.ID)
}

// cloneChat hands callers their own copy so fan-out never observes a store
// mutation mid-flight.
func cloneChat(c *models.Chat) models.Chat {
	out := *c
	out.Members = slices.Clone(c.Members)
	out.AdminIDs = slices.Clone(c.AdminIDs)
	return out
}
