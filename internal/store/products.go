package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
)

// ProductFilter holds optional list filters. Categoria matches
// partially and case-insensitively; Preco and Disponibilidade exactly.
type ProductFilter struct {
	Categoria       string
	Preco           *float64
	Disponibilidade *bool
	Limit           int
	Offset          int
}

// ListProducts retrieves non-deleted products matching a filter
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Produto, error) {
	query := "SELECT * FROM produtos WHERE deleted = FALSE"
	args := []interface{}{}

	if filter.Categoria != "" {
		args = append(args, "%"+filter.Categoria+"%")
		query += fmt.Sprintf(" AND categoria ILIKE $%d", len(args))
	}
	if filter.Preco != nil {
		args = append(args, *filter.Preco)
		query += fmt.Sprintf(" AND preco = $%d", len(args))
	}
	if filter.Disponibilidade != nil {
		args = append(args, *filter.Disponibilidade)
		query += fmt.Sprintf(" AND disponibilidade = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var produtos []models.Produto
	err := s.db.SelectContext(ctx, &produtos, query, args...)
	return produtos, err
}

// GetProductByID retrieves a non-deleted product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Produto, error) {
	var produto models.Produto
	err := s.db.GetContext(ctx, &produto,
		"SELECT * FROM produtos WHERE id = $1 AND deleted = FALSE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Produto não encontrado!")
	}
	if err != nil {
		return nil, err
	}
	return &produto, nil
}

// ProductBarcodeInUse reports whether another non-deleted product holds
// the barcode. excludeID skips a row, for update checks.
func (s *Store) ProductBarcodeInUse(ctx context.Context, codigoBarras string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM produtos WHERE codigo_barras = $1 AND deleted = FALSE AND id <> $2)",
		codigoBarras, excludeID)
	return exists, err
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, produto *models.Produto) error {
	query := `
		INSERT INTO produtos (descricao, codigo_barras, estoque, preco, categoria, data_validade, imagens, disponibilidade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, produto, query,
		produto.Descricao, produto.CodigoBarras, produto.Estoque, produto.Preco,
		produto.Categoria, produto.DataValidade, produto.Imagens, produto.Disponibilidade)
}

// UpdateProduct writes the mutable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, produto *models.Produto) error {
	query := `
		UPDATE produtos
		SET descricao = $1, codigo_barras = $2, estoque = $3, preco = $4,
			categoria = $5, data_validade = $6, imagens = $7, disponibilidade = $8,
			updated_at = NOW()
		WHERE id = $9`

	_, err := s.db.ExecContext(ctx, query,
		produto.Descricao, produto.CodigoBarras, produto.Estoque, produto.Preco,
		produto.Categoria, produto.DataValidade, produto.Imagens, produto.Disponibilidade,
		produto.ID)
	return err
}

// SoftDeleteProduct marks a product deleted; the row remains
func (s *Store) SoftDeleteProduct(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE produtos SET deleted = TRUE, updated_at = NOW() WHERE id = $1", id)
	return err
}
