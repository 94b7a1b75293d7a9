// Package queue carries notification messages between the tiers.
package queue

import (
	"context"
)

const (
	OrderNotifications = "order-notifications"
	StockUpdates       = "stock-updates"
)

// PoisonQueue names the queue that receives messages a handler rejected.
func PoisonQueue(name string) string {
	return name + "-poison"
}

type Sender interface {
	Send(ctx context.Context, queue string, payload []byte) error
}

// Handler processes one message. A non-nil error moves the message to the poison queue.
type Handler func(ctx context.Context, payload []byte) error

type Consumer interface {
	// Consume blocks, delivering messages from queue to h until ctx is cancelled.
	Consume(ctx context.Context, queue string, h Handler) error
}

type Queue interface {
	Sender
	Consumer
	Close() error
}
