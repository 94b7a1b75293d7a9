package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleOrder_DistinguishesCreatedAndStatusChanged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := New(queue.NewMemory(), zap.New(core), nil)

	created, err := json.Marshal(notify.OrderMessage{OrderID: "o1", CustomerName: "Ada Lovelace", Quantity: 2, Status: "Submitted"})
	require.NoError(t, err)
	require.NoError(t, w.HandleOrder(context.Background(), created))

	changed, err := json.Marshal(notify.StatusMessage{OrderID: "o1", PreviousStatus: "Submitted", NewStatus: "Cancelled"})
	require.NoError(t, err)
	require.NoError(t, w.HandleOrder(context.Background(), changed))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "order received", entries[0].Message)
	assert.Equal(t, "order status changed", entries[1].Message)
	assert.Equal(t, "Cancelled", entries[1].ContextMap()["new_status"])
}

func TestHandlers_RejectMalformedPayloads(t *testing.T) {
	w := New(queue.NewMemory(), nil, nil)
	assert.Error(t, w.HandleOrder(context.Background(), []byte("not json")))
	assert.Error(t, w.HandleOrder(context.Background(), []byte(`{}`)))
	assert.Error(t, w.HandleStock(context.Background(), []byte("not json")))
	assert.Error(t, w.HandleStock(context.Background(), []byte(`{"NewStock":1}`)))
}

func TestRun_DrainsQueuesAndPoisonsBadMessages(t *testing.T) {
	q := queue.NewMemory()
	reg := metrics.NewRegistry()
	m := metrics.NewWorkflow(reg)
	w := New(q, nil, m)

	ctx := context.Background()
	stock, err := json.Marshal(notify.StockMessage{ProductID: "p1", PreviousStock: 3, NewStock: 1})
	require.NoError(t, err)
	require.NoError(t, q.Send(ctx, queue.StockUpdates, stock))
	require.NoError(t, q.Send(ctx, queue.OrderNotifications, []byte("garbage")))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(runCtx) }()

	require.Eventually(t, func() bool {
		return len(q.Messages(queue.PoisonQueue(queue.OrderNotifications))) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return processed(t, reg, queue.StockUpdates, "ok") == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, q.Messages(queue.PoisonQueue(queue.StockUpdates)))
}

func processed(t *testing.T, reg *prometheus.Registry, queueName, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "storefront_queue_messages_processed_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["queue"] == queueName && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
