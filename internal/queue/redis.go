package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "queue:"

// Redis implements queues as lists: RPUSH to send, BLPOP to receive.
type Redis struct {
	client      *redis.Client
	logger      *zap.Logger
	pollTimeout time.Duration
}

func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger, pollTimeout: time.Second}
}

func redisKey(queue string) string {
	return redisKeyPrefix + queue
}

func (q *Redis) Send(ctx context.Context, queue string, payload []byte) error {
	return q.client.RPush(ctx, redisKey(queue), payload).Err()
}

func (q *Redis) Consume(ctx context.Context, queue string, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.client.BLPop(ctx, q.pollTimeout, redisKey(queue)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		// res is [key, value].
		payload := []byte(res[1])
		if err := h(ctx, payload); err != nil {
			q.logger.Warn("queue: handler failed, moving to poison list", zap.String("queue", queue), zap.Error(err))
			if perr := q.Send(context.WithoutCancel(ctx), PoisonQueue(queue), payload); perr != nil {
				q.logger.Error("queue: poison send failed", zap.String("queue", queue), zap.Error(perr))
			}
		}
	}
}

func (q *Redis) Close() error {
	return q.client.Close()
}
