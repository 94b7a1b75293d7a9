package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// consumeN runs Consume until n messages were handled or the deadline passes.
func consumeN(t *testing.T, c Consumer, queue string, n int, h Handler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	seen := 0
	done := make(chan error, 1)
	go func() {
		done <- c.Consume(ctx, queue, func(ctx context.Context, payload []byte) error {
			err := h(ctx, payload)
			mu.Lock()
			seen++
			if seen == n {
				cancel()
			}
			mu.Unlock()
			return err
		})
	}()
	require.NoError(t, <-done)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, n, seen, "handled messages")
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	require.NoError(t, q.Send(ctx, OrderNotifications, []byte(`{"a":1}`)))
	require.NoError(t, q.Send(ctx, OrderNotifications, []byte(`bad`)))

	var got []string
	consumeN(t, q, OrderNotifications, 2, func(_ context.Context, p []byte) error {
		got = append(got, string(p))
		if string(p) == "bad" {
			return errors.New("malformed")
		}
		return nil
	})

	assert.Equal(t, []string{`{"a":1}`, "bad"}, got)
	assert.Len(t, q.Messages(OrderNotifications), 2)
	require.Len(t, q.Messages(PoisonQueue(OrderNotifications)), 1)
	assert.Equal(t, "bad", string(q.Messages(PoisonQueue(OrderNotifications))[0]))
}

func TestMemoryQueueDropsOldestWhenFull(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()
	for i := 0; i <= memoryBuffer; i++ {
		require.NoError(t, q.Send(ctx, StockUpdates, []byte(strconv.Itoa(i))))
	}
	assert.Len(t, q.Messages(StockUpdates), memoryBuffer)

	var first string
	consumeN(t, q, StockUpdates, 1, func(_ context.Context, p []byte) error {
		first = string(p)
		return nil
	})
	assert.Equal(t, "1", first)
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	reject := func(context.Context, []byte) error { return errors.New("malformed") }

	q := NewMemory()
	require.NoError(t, deliver(ctx, q, OrderNotifications, []byte("ok"), func(context.Context, []byte) error { return nil }, logger))
	assert.Empty(t, q.Messages(PoisonQueue(OrderNotifications)))

	require.NoError(t, deliver(ctx, q, OrderNotifications, []byte("bad"), reject, logger))
	require.Len(t, q.Messages(PoisonQueue(OrderNotifications)), 1)

	err := deliver(ctx, &failingSender{}, OrderNotifications, []byte("bad"), reject, logger)
	assert.Error(t, err, "a message that could not be parked must not be acknowledged")
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := NewRedis(client, nil)
	q.pollTimeout = 100 * time.Millisecond
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.Send(ctx, StockUpdates, []byte(`{"ProductId":"p1"}`)))
	require.NoError(t, q.Send(ctx, StockUpdates, []byte(`boom`)))

	list, err := mr.List(redisKey(StockUpdates))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	var got []string
	consumeN(t, q, StockUpdates, 2, func(_ context.Context, p []byte) error {
		got = append(got, string(p))
		if string(p) == "boom" {
			return errors.New("handler failed")
		}
		return nil
	})

	assert.Equal(t, []string{`{"ProductId":"p1"}`, "boom"}, got)
	poison, err := mr.List(redisKey(PoisonQueue(StockUpdates)))
	require.NoError(t, err)
	assert.Equal(t, []string{"boom"}, poison)
}

type failingSender struct {
	calls int
}

func (f *failingSender) Send(context.Context, string, []byte) error {
	f.calls++
	return errors.New("broker down")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &failingSender{}
	b := NewBreaker(next, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.Error(t, b.Send(ctx, OrderNotifications, []byte("x")))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Send(ctx, OrderNotifications, []byte("x"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, next.calls, "open breaker must not reach the sender")
}
