package service

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
	"retail-api/internal/store"
)

type fakeIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{entries: map[string][]byte{}}
}

func (f *fakeIdempotencyStore) GetIdempotentResponse(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[key], nil
}

func (f *fakeIdempotencyStore) StoreIdempotentResponse(_ context.Context, key string, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = payload
	return nil
}

type fakePublisher struct {
	created   []*models.OrderCreatedEvent
	cancelled []*models.OrderCancelledEvent
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakePublisher) PublishOrderCancelled(_ context.Context, event *models.OrderCancelledEvent) error {
	f.cancelled = append(f.cancelled, event)
	return nil
}

func newOrderFixture(t *testing.T) (*OrderService, *fakeIdempotencyStore, *fakePublisher, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))
	idem := newFakeIdempotencyStore()
	pub := &fakePublisher{}

	return NewOrderService(st, idem, pub, time.Hour), idem, pub, mock
}

func expectOrderTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1 AND deleted = FALSE)")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT preco, estoque, disponibilidade FROM produtos WHERE id = $1 AND deleted = FALSE FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"preco", "estoque", "disponibilidade"}).
			AddRow(9.99, 10, true))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE produtos SET estoque = estoque - $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(2, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO pedidos (cliente_id, status, preco_total) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at")).
		WithArgs(int64(1), "PENDENTE", 9.99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO itens_pedido (pedido_id, produto_id, quantidade, preco) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs(int64(42), int64(5), 2, 9.99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectCommit()
}

func TestCreateOrderTotalIsCapturedUnitPrice(t *testing.T) {
	svc, _, pub, mock := newOrderFixture(t)
	expectOrderTx(mock)

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		ClienteID: 1,
		Produtos:  []OrderLineRequest{{ProdutoID: 5, Quantidade: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.PedidoID)
	// 2 units at 9.99: the total carries the unit price once.
	assert.Equal(t, 9.99, resp.PrecoTotal)
	assert.Equal(t, []OrderLineRequest{{ProdutoID: 5, Quantidade: 2}}, resp.Produtos)

	require.Len(t, pub.created, 1)
	assert.Equal(t, int64(42), pub.created[0].PedidoID)
	assert.Equal(t, models.EventTypeOrderCreated, pub.created[0].EventType)
	assert.NotEmpty(t, pub.created[0].EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderMissingFields(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{ClienteID: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))

	_, err = svc.CreateOrder(context.Background(), &CreateOrderRequest{
		Produtos: []OrderLineRequest{{ProdutoID: 5, Quantidade: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestCreateOrderIdempotentReplay(t *testing.T) {
	svc, idem, pub, mock := newOrderFixture(t)

	stored, err := json.Marshal(&CreateOrderResponse{
		PedidoID:   42,
		PrecoTotal: 9.99,
		Produtos:   []OrderLineRequest{{ProdutoID: 5, Quantidade: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, idem.StoreIdempotentResponse(context.Background(), "key-1", stored, time.Hour))

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		ClienteID:      1,
		Produtos:       []OrderLineRequest{{ProdutoID: 5, Quantidade: 2}},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.PedidoID)
	// Replay: no database work, no new event.
	assert.Empty(t, pub.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderStoresIdempotentResponse(t *testing.T) {
	svc, idem, _, mock := newOrderFixture(t)
	expectOrderTx(mock)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		ClienteID:      1,
		Produtos:       []OrderLineRequest{{ProdutoID: 5, Quantidade: 2}},
		IdempotencyKey: "key-2",
	})
	require.NoError(t, err)

	payload, err := idem.GetIdempotentResponse(context.Background(), "key-2")
	require.NoError(t, err)
	require.NotNil(t, payload)

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, int64(42), resp.PedidoID)
}

func TestListOrdersEmptyIsNotFound(t *testing.T) {
	svc, _, _, mock := newOrderFixture(t)

	mock.ExpectQuery("SELECT DISTINCT p\\..*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.ListOrders(context.Background(), store.OrderFilter{Limit: 10})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteOrderPublishesCancellation(t *testing.T) {
	svc, _, pub, mock := newOrderFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM pedidos WHERE id = $1 AND deleted = FALSE")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cliente_id", "status", "preco_total"}).
			AddRow(int64(42), int64(1), "PENDENTE", 9.99))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE pedidos SET deleted = TRUE, updated_at = NOW() WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	pedido, err := svc.DeleteOrder(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, pedido.Deleted)
	require.Len(t, pub.cancelled, 1)
	assert.Equal(t, int64(42), pub.cancelled[0].PedidoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
