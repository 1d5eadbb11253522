package sqlstore

import (
	"github.com/banterhq/banter/internal/models"
)

func (s *SQLStore) Append(chatID string, msg models.Message) error {
	query := s.rebind("INSERT INTO messages (id, chat_id, content, sender_id, sender_name, created_at, kind) VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err := s.db.Exec(query, msg.ID, chatID, msg.Content, msg.SenderID, msg.SenderName, msg.Timestamp, string(msg.Type))
	return err
}

func (s *SQLStore) ListMessages(chatID string) ([]models.Message, error) {
	query := s.rebind(`
		SELECT id, chat_id, content, sender_id, sender_name, created_at, kind
		FROM messages
		WHERE chat_id = ?
		ORDER BY seq ASC
	`)
	rows, err := s.db.Query(query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var kind string
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Content, &m.SenderID, &m.SenderName, &m.Timestamp, &kind); err != nil {
			return nil, err
		}
		m.Type = models.MessageKind(kind)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
