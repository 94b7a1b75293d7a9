// Package worker drains the notification queues. Each message is decoded and
// logged; malformed payloads are rejected so the queue moves them to its poison queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/queue"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// orderEvent covers both payload shapes published on the order queue.
type orderEvent struct {
	notify.OrderMessage
	PreviousStatus string `json:"PreviousStatus"`
	NewStatus      string `json:"NewStatus"`
	UpdatedBy      string `json:"UpdatedBy"`
}

type Worker struct {
	consumer queue.Consumer
	logger   *zap.Logger
	metrics  *metrics.Workflow
}

func New(consumer queue.Consumer, logger *zap.Logger, m *metrics.Workflow) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{consumer: consumer, logger: logger, metrics: m}
}

// Run consumes both queues until ctx is cancelled or one consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.consumer.Consume(ctx, queue.OrderNotifications, w.counted(queue.OrderNotifications, w.HandleOrder))
	})
	g.Go(func() error {
		return w.consumer.Consume(ctx, queue.StockUpdates, w.counted(queue.StockUpdates, w.HandleStock))
	})
	return g.Wait()
}

func (w *Worker) counted(name string, h queue.Handler) queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		err := h(ctx, payload)
		w.metrics.QueueMessage(name, err == nil)
		return err
	}
}

func (w *Worker) HandleOrder(_ context.Context, payload []byte) error {
	var ev orderEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		w.logger.Warn("worker: malformed order message", zap.ByteString("payload", payload), zap.Error(err))
		return fmt.Errorf("decode order message: %w", err)
	}
	if ev.OrderID == "" {
		return fmt.Errorf("order message without OrderId")
	}
	if ev.NewStatus != "" {
		w.logger.Info("order status changed",
			zap.String("order_id", ev.OrderID),
			zap.String("customer", ev.CustomerName),
			zap.String("product", ev.ProductName),
			zap.String("previous_status", ev.PreviousStatus),
			zap.String("new_status", ev.NewStatus),
			zap.String("updated_by", ev.UpdatedBy))
		return nil
	}
	w.logger.Info("order received",
		zap.String("order_id", ev.OrderID),
		zap.String("customer_id", ev.CustomerID),
		zap.String("customer", ev.CustomerName),
		zap.String("product", ev.ProductName),
		zap.Int("quantity", ev.Quantity),
		zap.Float64("total_price", ev.TotalPrice),
		zap.Time("order_date", ev.OrderDate),
		zap.String("status", ev.Status))
	return nil
}

func (w *Worker) HandleStock(_ context.Context, payload []byte) error {
	var msg notify.StockMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		w.logger.Warn("worker: malformed stock message", zap.ByteString("payload", payload), zap.Error(err))
		return fmt.Errorf("decode stock message: %w", err)
	}
	if msg.ProductID == "" {
		return fmt.Errorf("stock message without ProductId")
	}
	fields := []zap.Field{
		zap.String("product_id", msg.ProductID),
		zap.String("product", msg.ProductName),
		zap.Int("previous_stock", msg.PreviousStock),
		zap.Int("new_stock", msg.NewStock),
		zap.String("updated_by", msg.UpdatedBy),
	}
	if msg.NewStock == 0 {
		w.logger.Warn("product out of stock", fields...)
		return nil
	}
	w.logger.Info("stock updated", fields...)
	return nil
}
