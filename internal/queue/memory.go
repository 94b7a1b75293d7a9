package queue

import (
	"context"
	"sync"
)

const memoryBuffer = 1024

// Memory is an in-process Queue. Sent payloads are also recorded for inspection.
type Memory struct {
	mu       sync.Mutex
	channels map[string]chan []byte
	sent     map[string][][]byte
}

func NewMemory() *Memory {
	return &Memory{
		channels: make(map[string]chan []byte),
		sent:     make(map[string][][]byte),
	}
}

func (m *Memory) channel(queue string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[queue]
	if !ok {
		ch = make(chan []byte, memoryBuffer)
		m.channels[queue] = ch
	}
	return ch
}

// Send never blocks. When queue already holds memoryBuffer messages the oldest
// one is dropped to make room.
func (m *Memory) Send(ctx context.Context, queue string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := append([]byte(nil), payload...)
	ch := m.channel(queue)
	for {
		select {
		case ch <- msg:
			m.record(queue, msg)
			return nil
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m *Memory) record(queue string, msg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := append(m.sent[queue], msg)
	if len(sent) > memoryBuffer {
		sent = append([][]byte(nil), sent[len(sent)-memoryBuffer:]...)
	}
	m.sent[queue] = sent
}

func (m *Memory) Consume(ctx context.Context, queue string, h Handler) error {
	ch := m.channel(queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ch:
			if err := h(ctx, msg); err != nil {
				_ = m.Send(context.WithoutCancel(ctx), PoisonQueue(queue), msg)
			}
		}
	}
}

// Messages returns every payload sent to queue so far.
func (m *Memory) Messages(queue string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.sent[queue]...)
}

func (m *Memory) Close() error { return nil }
