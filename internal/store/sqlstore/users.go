package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banterhq/banter/internal/ids"
	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

func (s *SQLStore) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = ids.NewUserID()
	}
	query := s.rebind("INSERT INTO users (id, username, password) VALUES (?, ?, ?)")
	if _, err := s.db.Exec(query, user.ID, user.Username, user.Password); err != nil {
		return fmt.Errorf("user %s: %w", user.Username, store.ErrAlreadyExists)
	}
	return nil
}

func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT id, username, password FROM users WHERE username = ?")
	err := s.db.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) SearchUsers(query string) ([]models.User, error) {
	q := s.rebind("SELECT id, username FROM users WHERE username LIKE ? LIMIT 5")
	rows, err := s.db.Query(q, query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
