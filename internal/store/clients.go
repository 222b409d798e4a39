package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
)

// ClientFilter holds optional list filters, matched partially and
// case-insensitively.
type ClientFilter struct {
	Nome   string
	Email  string
	Limit  int
	Offset int
}

// ListClients retrieves non-deleted clients matching a filter
func (s *Store) ListClients(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	query := "SELECT * FROM clients WHERE deleted = FALSE"
	args := []interface{}{}

	if filter.Nome != "" {
		args = append(args, "%"+filter.Nome+"%")
		query += fmt.Sprintf(" AND nome ILIKE $%d", len(args))
	}
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		query += fmt.Sprintf(" AND email ILIKE $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var clients []models.Client
	err := s.db.SelectContext(ctx, &clients, query, args...)
	return clients, err
}

// GetClientByID retrieves a non-deleted client by ID
func (s *Store) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND deleted = FALSE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Cliente não encontrado!")
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ClientExists reports whether a non-deleted client already holds the
// email or the CPF. excludeID skips a row, for update checks.
func (s *Store) ClientExists(ctx context.Context, email, cpf string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE (email = $1 OR cpf = $2) AND deleted = FALSE AND id <> $3)",
		email, cpf, excludeID)
	return exists, err
}

// ClientEmailInUse reports whether another non-deleted client holds the email
func (s *Store) ClientEmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1 AND deleted = FALSE AND id <> $2)",
		email, excludeID)
	return exists, err
}

// ClientCPFInUse reports whether another non-deleted client holds the CPF
func (s *Store) ClientCPFInUse(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE cpf = $1 AND deleted = FALSE AND id <> $2)",
		cpf, excludeID)
	return exists, err
}

// CreateClient inserts a new client
func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (nome, email, cpf)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, client, query,
		client.Nome, client.Email, client.CPF)
}

// UpdateClient writes the mutable fields of a client
func (s *Store) UpdateClient(ctx context.Context, client *models.Client) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE clients SET nome = $1, email = $2, cpf = $3, updated_at = NOW() WHERE id = $4",
		client.Nome, client.Email, client.CPF, client.ID)
	return err
}

// SoftDeleteClient marks a client deleted; the row remains
func (s *Store) SoftDeleteClient(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE clients SET deleted = TRUE, updated_at = NOW() WHERE id = $1", id)
	return err
}

// NormalizeCPF strips the formatting characters accepted on input.
func NormalizeCPF(cpf string) string {
	cpf = strings.ReplaceAll(cpf, "-", "")
	return strings.ReplaceAll(cpf, ".", "")
}
