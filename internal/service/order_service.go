package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
	"retail-api/internal/store"
	"retail-api/internal/util"
)

// IdempotencyStore caches order responses under caller-supplied keys.
// Implemented by redisclient.Client.
type IdempotencyStore interface {
	GetIdempotentResponse(ctx context.Context, key string) ([]byte, error)
	StoreIdempotentResponse(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// OrderEventPublisher publishes order domain events. Implemented by
// broker.EventPublisher.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// OrderService handles the order creation workflow and order reads
type OrderService struct {
	store          *store.Store
	redis          IdempotencyStore
	eventPublisher OrderEventPublisher
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis IdempotencyStore,
	eventPublisher OrderEventPublisher,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClienteID      int64              `json:"cliente_id"`
	Produtos       []OrderLineRequest `json:"produtos"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderLineRequest represents one requested line of an order
type OrderLineRequest struct {
	ProdutoID  int64 `json:"produto_id"`
	Quantidade int   `json:"quantidade"`
}

// CreateOrderResponse echoes the created order and the lines as
// submitted.
type CreateOrderResponse struct {
	PedidoID   int64              `json:"pedido_id"`
	PrecoTotal float64            `json:"preco_total"`
	Produtos   []OrderLineRequest `json:"produtos"`
}

// CreateOrder validates the request and creates the order, its line
// items and the stock decrements inside a single transaction. A failure
// on any line leaves no stock change and no partial order behind.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	}()

	if req.ClienteID == 0 || len(req.Produtos) == 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, apperr.InvalidRequest("Informação obrigatória para cadastro não informada")
	}

	if req.IdempotencyKey != "" {
		cached, err := s.redis.GetIdempotentResponse(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		} else if cached != nil {
			var resp CreateOrderResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				s.logger.Info("Duplicate order request replayed",
					zap.String("idempotency_key", req.IdempotencyKey),
					zap.Int64("pedido_id", resp.PedidoID))
				return &resp, nil
			}
		}
	}

	lines := make([]store.OrderLine, len(req.Produtos))
	for i, p := range req.Produtos {
		lines[i] = store.OrderLine{ProdutoID: p.ProdutoID, Quantidade: p.Quantidade}
	}

	pedido, items, err := s.store.CreateOrderTx(ctx, req.ClienteID, lines)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("pedido_id", pedido.ID),
		zap.Int64("cliente_id", pedido.ClienteID),
		zap.Float64("preco_total", pedido.PrecoTotal))

	resp := &CreateOrderResponse{
		PedidoID:   pedido.ID,
		PrecoTotal: pedido.PrecoTotal,
		Produtos:   req.Produtos,
	}

	if req.IdempotencyKey != "" {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.redis.StoreIdempotentResponse(ctx, req.IdempotencyKey, payload, s.idempotencyTTL); err != nil {
				s.logger.Warn("Failed to store idempotent response", zap.Error(err))
			}
		}
	}

	s.publishOrderCreated(ctx, pedido, items)

	return resp, nil
}

// publishOrderCreated publishes the OrderCreated event. Publish
// failures are logged, never surfaced to the caller.
func (s *OrderService) publishOrderCreated(ctx context.Context, pedido *models.Pedido, items []models.ItemPedido) {
	itemData := make([]models.OrderItemData, len(items))
	for i, item := range items {
		itemData[i] = models.OrderItemData{
			ProdutoID:  item.ProdutoID,
			Quantidade: item.Quantidade,
			Preco:      item.Preco,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		PedidoID:   pedido.ID,
		ClienteID:  pedido.ClienteID,
		PrecoTotal: pedido.PrecoTotal,
		Itens:      itemData,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}

// ListOrders retrieves orders matching a filter
func (s *OrderService) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Pedido, error) {
	pedidos, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(pedidos) == 0 {
		return nil, apperr.NotFound("Pedidos não encontrados com os parâmetros solicitados!")
	}
	return pedidos, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Pedido, error) {
	return s.store.GetOrderByID(ctx, id)
}

// OrderPatch enumerates the updatable fields of an order. Absent
// fields are left unchanged; anything else in the body is ignored.
type OrderPatch struct {
	ClienteID *int64  `json:"cliente_id"`
	Status    *string `json:"status"`
}

// UpdateOrder applies a patch to an order
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, patch *OrderPatch) (*models.Pedido, error) {
	pedido, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ClienteID != nil {
		pedido.ClienteID = *patch.ClienteID
	}
	if patch.Status != nil {
		pedido.Status = *patch.Status
	}

	if err := s.store.UpdateOrder(ctx, pedido); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return pedido, nil
}

// DeleteOrder soft-deletes an order and publishes a cancellation event
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (*models.Pedido, error) {
	pedido, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SoftDeleteOrder(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	pedido.Deleted = true

	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		PedidoID:  pedido.ID,
		ClienteID: pedido.ClienteID,
		Reason:    "deleted",
	}
	if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	return pedido, nil
}

func failureReason(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidRequest:
		return "invalid_request"
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindUnavailable:
		return "unavailable"
	case apperr.KindInsufficientStock:
		return "insufficient_stock"
	default:
		return "db_error"
	}
}
