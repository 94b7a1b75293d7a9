// Package notify publishes order and stock events to the notification queues.
// Delivery is best effort: failures are logged and counted, never returned.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/queue"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

type OrderMessage struct {
	OrderID      string    `json:"OrderId"`
	CustomerID   string    `json:"CustomerId"`
	CustomerName string    `json:"CustomerName"`
	ProductName  string    `json:"ProductName"`
	Quantity     int       `json:"Quantity"`
	TotalPrice   float64   `json:"TotalPrice"`
	OrderDate    time.Time `json:"OrderDate"`
	Status       string    `json:"Status"`
}

type StockMessage struct {
	ProductID     string    `json:"ProductId"`
	ProductName   string    `json:"ProductName"`
	PreviousStock int       `json:"PreviousStock"`
	NewStock      int       `json:"NewStock"`
	UpdatedBy     string    `json:"UpdatedBy"`
	UpdateDate    time.Time `json:"UpdateDate"`
}

type StatusMessage struct {
	OrderID        string    `json:"OrderId"`
	CustomerID     string    `json:"CustomerId"`
	CustomerName   string    `json:"CustomerName"`
	ProductName    string    `json:"ProductName"`
	PreviousStatus string    `json:"PreviousStatus"`
	NewStatus      string    `json:"NewStatus"`
	UpdatedDate    time.Time `json:"UpdatedDate"`
	UpdatedBy      string    `json:"UpdatedBy"`
}

type Notifier struct {
	sender  queue.Sender
	logger  *zap.Logger
	timeout time.Duration
	metrics *metrics.Workflow
	now     func() time.Time
}

func New(sender queue.Sender, logger *zap.Logger, timeout time.Duration, m *metrics.Workflow) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{sender: sender, logger: logger, timeout: timeout, metrics: m, now: time.Now}
}

func (n *Notifier) OrderCreated(ctx context.Context, o domain.Order, c domain.Customer) {
	n.send(ctx, queue.OrderNotifications, OrderMessage{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: c.FullName(),
		ProductName:  o.ProductName,
		Quantity:     o.Quantity,
		TotalPrice:   domain.CentsToAmount(o.TotalPriceCents),
		OrderDate:    o.OrderDate,
		Status:       string(o.Status),
	})
}

func (n *Notifier) StockChanged(ctx context.Context, p domain.Product, previous, next int, updatedBy string) {
	n.send(ctx, queue.StockUpdates, StockMessage{
		ProductID:     p.ID,
		ProductName:   p.Name,
		PreviousStock: previous,
		NewStock:      next,
		UpdatedBy:     updatedBy,
		UpdateDate:    n.now().UTC(),
	})
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, o domain.Order, customerName string, previous domain.OrderStatus, updatedBy string) {
	n.send(ctx, queue.OrderNotifications, StatusMessage{
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		CustomerName:   customerName,
		ProductName:    o.ProductName,
		PreviousStatus: string(previous),
		NewStatus:      string(o.Status),
		UpdatedDate:    n.now().UTC(),
		UpdatedBy:      updatedBy,
	})
}

func (n *Notifier) send(ctx context.Context, queueName string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("notify: marshal", zap.String("queue", queueName), zap.Error(err))
		n.metrics.NotificationFailed(queueName)
		return
	}
	// The caller's request may already be finishing; the send gets its own deadline.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	if err := n.sender.Send(sendCtx, queueName, payload); err != nil {
		n.logger.Warn("notify: send failed", zap.String("queue", queueName), zap.Error(err))
		n.metrics.NotificationFailed(queueName)
		return
	}
	n.logger.Debug("notify: sent", zap.String("queue", queueName))
}
