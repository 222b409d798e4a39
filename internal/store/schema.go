package store

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		senha TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		email TEXT NOT NULL,
		cpf TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS produtos (
		id BIGSERIAL PRIMARY KEY,
		descricao TEXT NOT NULL,
		codigo_barras TEXT NOT NULL,
		estoque INTEGER NOT NULL CHECK (estoque >= 0),
		preco DOUBLE PRECISION NOT NULL,
		categoria TEXT NOT NULL,
		data_validade TEXT,
		imagens JSONB NOT NULL DEFAULT '[]',
		disponibilidade BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS pedidos (
		id BIGSERIAL PRIMARY KEY,
		cliente_id BIGINT NOT NULL REFERENCES clients(id),
		status TEXT NOT NULL,
		preco_total DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS itens_pedido (
		id BIGSERIAL PRIMARY KEY,
		pedido_id BIGINT NOT NULL REFERENCES pedidos(id),
		produto_id BIGINT NOT NULL REFERENCES produtos(id),
		quantidade INTEGER NOT NULL,
		preco DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Uniqueness among non-deleted rows only: a soft-deleted row must not
// block reuse of its unique fields, so plain UNIQUE constraints cannot
// express client/product uniqueness. Partial unique indexes do.
var indexStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS clients_email_active ON clients (email) WHERE NOT deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS clients_cpf_active ON clients (cpf) WHERE NOT deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS produtos_codigo_barras_active ON produtos (codigo_barras) WHERE NOT deleted`,
	`CREATE INDEX IF NOT EXISTS pedidos_cliente_id ON pedidos (cliente_id)`,
	`CREATE INDEX IF NOT EXISTS itens_pedido_pedido_id ON itens_pedido (pedido_id)`,
}

// Migrate applies the schema. Statements are idempotent so this runs
// on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
