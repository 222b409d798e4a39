package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User is an authenticated operator of the API.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Senha     string    `db:"senha" json:"-"`
	Email     string    `db:"email" json:"email"`
	Admin     bool      `db:"admin" json:"admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Deleted   bool      `db:"deleted" json:"-"`
}

// Client is a customer that orders are placed for.
type Client struct {
	ID        int64     `db:"id" json:"id"`
	Nome      string    `db:"nome" json:"nome"`
	Email     string    `db:"email" json:"email"`
	CPF       string    `db:"cpf" json:"cpf"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Deleted   bool      `db:"deleted" json:"-"`
}

// Imagens is an ordered list of opaque image references stored as JSON.
type Imagens []string

// Value implements driver.Valuer for the jsonb column.
func (i Imagens) Value() (driver.Value, error) {
	if i == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner for the jsonb column.
func (i *Imagens) Scan(src interface{}) error {
	if src == nil {
		*i = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("imagens: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, i)
}

// Produto is a catalog product. Disponibilidade is independent of
// estoque: a product can be in stock but flagged unavailable.
type Produto struct {
	ID              int64     `db:"id" json:"id"`
	Descricao       string    `db:"descricao" json:"descricao"`
	CodigoBarras    string    `db:"codigo_barras" json:"codigo_barras"`
	Estoque         int       `db:"estoque" json:"estoque"`
	Preco           float64   `db:"preco" json:"preco"`
	Categoria       string    `db:"categoria" json:"categoria"`
	DataValidade    *string   `db:"data_validade" json:"data_validade"`
	Imagens         Imagens   `db:"imagens" json:"imagens"`
	Disponibilidade bool      `db:"disponibilidade" json:"disponibilidade"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	Deleted         bool      `db:"deleted" json:"-"`
}

// Pedido is a customer order. PrecoTotal is fixed at creation time and
// never recomputed.
type Pedido struct {
	ID         int64     `db:"id" json:"id"`
	ClienteID  int64     `db:"cliente_id" json:"cliente_id"`
	Status     string    `db:"status" json:"status"`
	PrecoTotal float64   `db:"preco_total" json:"preco_total"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Deleted    bool      `db:"deleted" json:"-"`
}

// ItemPedido is one line of an order. Preco is the unit price captured
// when the order was created, independent of later product changes.
type ItemPedido struct {
	ID         int64   `db:"id" json:"id"`
	PedidoID   int64   `db:"pedido_id" json:"pedido_id"`
	ProdutoID  int64   `db:"produto_id" json:"produto_id"`
	Quantidade int     `db:"quantidade" json:"quantidade"`
	Preco      float64 `db:"preco" json:"preco"`
}

// Order statuses. Status is free text in the schema; these are the
// values the service itself writes.
const (
	PedidoStatusPendente  = "PENDENTE"
	PedidoStatusCancelado = "CANCELADO"
)

// OrderEvent is the audit record of a domain event consumed from the
// broker. EventID deduplicates redeliveries.
type OrderEvent struct {
	EventID    string    `db:"event_id"`
	EventType  string    `db:"event_type"`
	Payload    []byte    `db:"payload"`
	ReceivedAt time.Time `db:"received_at"`
}
