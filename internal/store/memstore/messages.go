package memstore

import (
	"slices"

	"github.com/banterhq/banter/internal/models"
)

func (s *Store) Append(chatID string, msg models.Message) error {
	s.messagesMu.Lock()
	defer s.messagesMu.Unlock()

	s.messages[chatID] = append(s.messages[chatID], msg)
	return nil
}

func (s *Store) ListMessages(chatID string) ([]models.Message, error) {
	s.messagesMu.RLock()
	defer s.messagesMu.RUnlock()

	return slices.Clone(s.messages[chatID]), nil
}
