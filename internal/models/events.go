package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order commits
type OrderCreatedEvent struct {
	BaseEvent
	PedidoID   int64           `json:"pedido_id"`
	ClienteID  int64           `json:"cliente_id"`
	PrecoTotal float64         `json:"preco_total"`
	Itens      []OrderItemData `json:"itens"`
}

// OrderCancelledEvent published when an order is soft-deleted
type OrderCancelledEvent struct {
	BaseEvent
	PedidoID  int64  `json:"pedido_id"`
	ClienteID int64  `json:"cliente_id"`
	Reason    string `json:"reason"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProdutoID  int64   `json:"produto_id"`
	Quantidade int     `json:"quantidade"`
	Preco      float64 `json:"preco"`
}
