package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
)

// OrderLine is one requested (product, quantity) pair of an order.
type OrderLine struct {
	ProdutoID  int64
	Quantidade int
}

// OrderFilter holds optional list filters for orders. Secao matches the
// category of any product among the order's line items.
type OrderFilter struct {
	PeriodoInicio *time.Time
	PeriodoFim    *time.Time
	PedidoID      *int64
	Status        string
	ClienteID     *int64
	Secao         string
	Limit         int
	Offset        int
}

// CreateOrderTx creates an order and its line items as one transaction.
// Products are locked row by row in input order; stock is decremented
// only after the availability and sufficiency checks pass. Any failure
// rolls the whole order back, leaving stock untouched.
func (s *Store) CreateOrderTx(ctx context.Context, clienteID int64, lines []OrderLine) (*models.Pedido, []models.ItemPedido, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var clientExists bool
	err = tx.GetContext(ctx, &clientExists,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1 AND deleted = FALSE)", clienteID)
	if err != nil {
		return nil, nil, err
	}
	if !clientExists {
		return nil, nil, apperr.NotFound("Cliente não encontrado!")
	}

	var total float64
	items := make([]models.ItemPedido, 0, len(lines))

	for _, line := range lines {
		if line.ProdutoID == 0 || line.Quantidade <= 0 {
			return nil, nil, apperr.InvalidRequest("Informação obrigatória para cadastro de produto não informada")
		}

		var produto struct {
			Preco           float64 `db:"preco"`
			Estoque         int     `db:"estoque"`
			Disponibilidade bool    `db:"disponibilidade"`
		}
		err = tx.GetContext(ctx, &produto,
			"SELECT preco, estoque, disponibilidade FROM produtos WHERE id = $1 AND deleted = FALSE FOR UPDATE",
			line.ProdutoID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.NotFound("Produto não encontrado!")
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock product %d: %w", line.ProdutoID, err)
		}

		if !produto.Disponibilidade {
			return nil, nil, apperr.Unavailable("Produto indisponível!")
		}
		if produto.Estoque < line.Quantidade {
			return nil, nil, apperr.InsufficientStock("Quantidade não disponível!")
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE produtos SET estoque = estoque - $1, updated_at = NOW() WHERE id = $2",
			line.Quantidade, line.ProdutoID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrement stock for product %d: %w", line.ProdutoID, err)
		}

		// Running total accumulates the captured unit price per line,
		// not price times quantity. See DESIGN.md.
		total += produto.Preco

		items = append(items, models.ItemPedido{
			ProdutoID:  line.ProdutoID,
			Quantidade: line.Quantidade,
			Preco:      produto.Preco,
		})
	}

	pedido := &models.Pedido{
		ClienteID:  clienteID,
		Status:     models.PedidoStatusPendente,
		PrecoTotal: total,
	}
	err = tx.GetContext(ctx, pedido,
		"INSERT INTO pedidos (cliente_id, status, preco_total) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		pedido.ClienteID, pedido.Status, pedido.PrecoTotal)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].PedidoID = pedido.ID
		err = tx.GetContext(ctx, &items[i].ID,
			"INSERT INTO itens_pedido (pedido_id, produto_id, quantidade, preco) VALUES ($1, $2, $3, $4) RETURNING id",
			items[i].PedidoID, items[i].ProdutoID, items[i].Quantidade, items[i].Preco)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return pedido, items, nil
}

// ListOrders retrieves non-deleted orders matching a filter
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Pedido, error) {
	query := "SELECT DISTINCT p.* FROM pedidos p"
	if filter.Secao != "" {
		query += " JOIN itens_pedido i ON i.pedido_id = p.id JOIN produtos pr ON pr.id = i.produto_id"
	}
	query += " WHERE p.deleted = FALSE"
	args := []interface{}{}

	if filter.PeriodoInicio != nil {
		args = append(args, *filter.PeriodoInicio)
		query += fmt.Sprintf(" AND p.created_at >= $%d", len(args))
	}
	if filter.PeriodoFim != nil {
		args = append(args, *filter.PeriodoFim)
		query += fmt.Sprintf(" AND p.created_at <= $%d", len(args))
	}
	if filter.PedidoID != nil {
		args = append(args, *filter.PedidoID)
		query += fmt.Sprintf(" AND p.id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	if filter.ClienteID != nil {
		args = append(args, *filter.ClienteID)
		query += fmt.Sprintf(" AND p.cliente_id = $%d", len(args))
	}
	if filter.Secao != "" {
		args = append(args, filter.Secao)
		query += fmt.Sprintf(" AND pr.categoria = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY p.id LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var pedidos []models.Pedido
	err := s.db.SelectContext(ctx, &pedidos, query, args...)
	return pedidos, err
}

// GetOrderByID retrieves a non-deleted order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Pedido, error) {
	var pedido models.Pedido
	err := s.db.GetContext(ctx, &pedido,
		"SELECT * FROM pedidos WHERE id = $1 AND deleted = FALSE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Pedido não encontrado!")
	}
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

// UpdateOrder writes the updatable fields of an order. Line items and
// preco_total are fixed at creation and have no mutation path.
func (s *Store) UpdateOrder(ctx context.Context, pedido *models.Pedido) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pedidos SET cliente_id = $1, status = $2, updated_at = NOW() WHERE id = $3",
		pedido.ClienteID, pedido.Status, pedido.ID)
	return err
}

// SoftDeleteOrder marks an order deleted; the row and its items remain
func (s *Store) SoftDeleteOrder(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pedidos SET deleted = TRUE, updated_at = NOW() WHERE id = $1", id)
	return err
}

// InsertOrderEvent records a consumed domain event, ignoring
// redeliveries of the same event ID.
func (s *Store) InsertOrderEvent(ctx context.Context, eventID, eventType string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_events (event_id, event_type, payload) VALUES ($1, $2, $3) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType, payload)
	return err
}
