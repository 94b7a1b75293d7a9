package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Kafka maps every queue to a topic of the same name.
type Kafka struct {
	brokers []string
	groupID string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafka(brokers []string, groupID string, logger *zap.Logger) *Kafka {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kafka{
		brokers: brokers,
		groupID: groupID,
		logger:  logger,
		writers: make(map[string]*kafka.Writer),
	}
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(k.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *Kafka) Send(ctx context.Context, queue string, payload []byte) error {
	return k.writer(queue).WriteMessages(ctx, kafka.Message{Value: payload, Time: time.Now().UTC()})
}

func (k *Kafka) Consume(ctx context.Context, queue string, h Handler) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		Topic:    queue,
		GroupID:  k.groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	defer r.Close()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := deliver(ctx, k, queue, msg.Value, h, k.logger); err != nil {
			// Committing a later offset would skip this message, so stop here.
			// The group resumes from the last committed offset after a restart.
			return fmt.Errorf("queue %s offset %d: %w", queue, msg.Offset, err)
		}
		if err := r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			k.logger.Error("queue: commit failed", zap.String("queue", queue), zap.Error(err))
		}
	}
}

// deliver hands payload to h and moves it to the poison queue when h fails.
// An error means the payload was neither handled nor parked, and must not be acknowledged.
func deliver(ctx context.Context, s Sender, queue string, payload []byte, h Handler, logger *zap.Logger) error {
	err := h(ctx, payload)
	if err == nil {
		return nil
	}
	logger.Warn("queue: handler failed, moving to poison queue", zap.String("queue", queue), zap.Error(err))
	if perr := s.Send(ctx, PoisonQueue(queue), payload); perr != nil {
		logger.Error("queue: poison send failed", zap.String("queue", queue), zap.Error(perr))
		return fmt.Errorf("poison send: %w", perr)
	}
	return nil
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var errs []error
	for _, w := range k.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
