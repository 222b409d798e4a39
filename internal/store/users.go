package store

import (
	"context"
	"database/sql"
	"errors"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
)

// GetUserByUsername retrieves a non-deleted user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE username = $1 AND deleted = FALSE", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Usuário com essas informações não encontrado!")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a non-deleted user already holds the
// username or the email.
func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE (username = $1 OR email = $2) AND deleted = FALSE)",
		username, email)
	return exists, err
}

// CreateUser inserts a new user
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, senha, email, admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, user, query,
		user.Username, user.Senha, user.Email, user.Admin)
}
