package memstore

import (
	"fmt"
	"strings"

	"github.com/banterhq/banter/internal/ids"
	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

func (s *Store) CreateUser(user *models.User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("user %s: %w", user.Username, store.ErrAlreadyExists)
	}
	if user.ID == "" {
		user.ID = ids.NewUserID()
	}
	u := *user
	s.users[user.Username] = &u
	s.userOrder = append(s.userOrder, user.Username)
	return nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	}
	u := *user
	return &u, nil
}

func (s *Store) SearchUsers(query string) ([]models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	var users []models.User
	for _, username := range s.userOrder {
		if len(users) == 5 {
			break
		}
		if strings.HasPrefix(username, query) {
			users = append(users, *s.users[username])
		}
	}
	return users, nil
}
