package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/banterhq/banter/internal/ids"
	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

func (s *SQLStore) ListChatsForUser(userID string) ([]models.Chat, error) {
	// Ordered by id only for stability; callers apply their own sort.
	query := s.rebind(`
		SELECT c.id
		FROM chats c
		JOIN chat_members m ON c.id = m.chat_id
		WHERE m.user_id = ?
		ORDER BY c.id
	`)

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		chatIDs = append(chatIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var chats []models.Chat
	for _, id := range chatIDs {
		chat, err := s.GetChat(id)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

func (s *SQLStore) FindPersonalChat(userA, userB string) (*models.Chat, error) {
	query := s.rebind(`
		SELECT c.id
		FROM chats c
		WHERE c.kind = 'personal'
		AND EXISTS (SELECT 1 FROM chat_members WHERE chat_id = c.id AND user_id = ?)
		AND EXISTS (SELECT 1 FROM chat_members WHERE chat_id = c.id AND user_id = ?)
		LIMIT 1
	`)

	var id string
	err := s.db.QueryRow(query, userA, userB).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("personal chat for %s and %s: %w", userA, userB, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.GetChat(id)
}

func (s *SQLStore) CreatePersonalChat(userA, userB string) (*models.Chat, error) {
	if existing, err := s.FindPersonalChat(userA, userB); err == nil {
		return existing, store.ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	chat := &models.Chat{
		ID:              ids.NewChatID(),
		Type:            models.ChatPersonal,
		Members:         []string{userA, userB},
		LastMessageTime: time.Now(),
	}
	if err := s.insertChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *SQLStore) CreateGroupChat(name string, memberIDs []string, adminID string) (*models.Chat, error) {
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
	if err := s.insertChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *SQLStore) insertChat(chat *models.Chat) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.rebind("INSERT INTO chats (id, kind, name, last_message, last_message_time, unread_count) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := tx.Exec(query, chat.ID, string(chat.Type), chat.Name, chat.LastMessage, chat.LastMessageTime, chat.UnreadCount); err != nil {
		return err
	}

	memberQuery := s.rebind("INSERT INTO chat_members (chat_id, user_id, position, is_admin) VALUES (?, ?, ?, ?)")
	for i, member := range chat.Members {
		isAdmin := slices.Contains(chat.AdminIDs, member)
		if _, err := tx.Exec(memberQuery, chat.ID, member, i, isAdmin); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLStore) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	var kind string
	query := s.rebind("SELECT id, kind, name, last_message, last_message_time, unread_count FROM chats WHERE id = ?")
	err := s.db.QueryRow(query, chatID).Scan(&chat.ID, &kind, &chat.Name, &chat.LastMessage, &chat.LastMessageTime, &chat.UnreadCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %s: %w", chatID, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	chat.Type = models.ChatKind(kind)

	memberQuery := s.rebind("SELECT user_id, is_admin FROM chat_members WHERE chat_id = ? ORDER BY position")
	rows, err := s.db.Query(memberQuery, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var isAdmin bool
		if err := rows.Scan(&userID, &isAdmin); err != nil {
			return nil, err
		}
		chat.Members = append(chat.Members, userID)
		if isAdmin {
			chat.AdminIDs = append(chat.AdminIDs, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *SQLStore) RecordActivity(chatID, content string, at time.Time) error {
	query := s.rebind("UPDATE chats SET last_message = ?, last_message_time = ?, unread_count = 1 WHERE id = ?")
	// Zero rows affected means the chat is unknown; that is a silent no-op.
	_, err := s.db.Exec(query, content, at, chatID)
	return err
}
