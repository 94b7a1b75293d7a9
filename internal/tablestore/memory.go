package tablestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryKey struct {
	table, pk, rk string
}

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu       sync.Mutex
	entities map[memoryKey]Entity
}

func NewMemory() *Memory {
	return &Memory{entities: make(map[memoryKey]Entity)}
}

func (m *Memory) Get(_ context.Context, table, pk, rk string) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[memoryKey{table, pk, rk}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(e), nil
}

func (m *Memory) List(_ context.Context, table, pk string) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entity
	for k, e := range m.entities {
		if k.table == table && k.pk == pk {
			out = append(out, *clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowKey < out[j].RowKey })
	return out, nil
}

func (m *Memory) Insert(_ context.Context, table string, e Entity) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{table, e.PartitionKey, e.RowKey}
	if _, ok := m.entities[key]; ok {
		return nil, domain.ErrAlreadyExists
	}
	e.ETag = newETag()
	e.Timestamp = time.Now().UTC()
	m.entities[key] = *clone(e)
	return clone(e), nil
}

func (m *Memory) Update(_ context.Context, table string, e Entity, expectedETag string) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{table, e.PartitionKey, e.RowKey}
	stored, ok := m.entities[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !matches(stored.ETag, expectedETag) {
		return nil, ErrConflict
	}
	e.ETag = newETag()
	e.Timestamp = time.Now().UTC()
	m.entities[key] = *clone(e)
	return clone(e), nil
}

func (m *Memory) Delete(_ context.Context, table, pk, rk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{table, pk, rk}
	if _, ok := m.entities[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.entities, key)
	return nil
}

func clone(e Entity) *Entity {
	c := e
	c.Data = append([]byte(nil), e.Data...)
	return &c
}
