package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"retail-api/internal/broker"
	"retail-api/internal/models"
	"retail-api/internal/store"
	"retail-api/internal/util"
)

// AuditWorker consumes order domain events and records them in the
// order_events audit table. Event IDs deduplicate redeliveries.
type AuditWorker struct {
	consumer *broker.Consumer
	store    *store.Store
	handler  *broker.EventHandler
	logger   *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, store *store.Store) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		store:    store,
		handler:  broker.NewEventHandler(),
		logger:   util.GetLogger(),
	}

	w.handler.OnOrderCreated(func(ctx context.Context, event *models.OrderCreatedEvent) error {
		return w.record(ctx, event.BaseEvent, event)
	})
	w.handler.OnOrderCancelled(func(ctx context.Context, event *models.OrderCancelledEvent) error {
		return w.record(ctx, event.BaseEvent, event)
	})

	return w
}

func (w *AuditWorker) record(ctx context.Context, base models.BaseEvent, event interface{}) error {
	if base.EventID == "" {
		w.logger.Warn("dropping event without ID", zap.String("type", base.EventType))
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return w.store.InsertOrderEvent(ctx, base.EventID, base.EventType, payload)
}

// Start consumes events until the context is cancelled
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("starting audit worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("stopping audit worker")
	return w.consumer.Close()
}
