// Package tablestore is a partitioned key-value entity store with ETag-based
// optimistic concurrency. Entities carry their payload as raw JSON.
package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnyETag makes Update skip the ETag comparison.
const AnyETag = "*"

// ErrConflict is returned by Update when the stored ETag differs from the expected one.
var ErrConflict = errors.New("tablestore: etag mismatch")

type Entity struct {
	PartitionKey string
	RowKey       string
	ETag         string
	Timestamp    time.Time
	Data         json.RawMessage
}

// Store is implemented by every backend. Missing entities yield domain.ErrNotFound,
// duplicate inserts yield domain.ErrAlreadyExists.
type Store interface {
	Get(ctx context.Context, table, partitionKey, rowKey string) (*Entity, error)
	List(ctx context.Context, table, partitionKey string) ([]Entity, error)
	Insert(ctx context.Context, table string, e Entity) (*Entity, error)
	Update(ctx context.Context, table string, e Entity, expectedETag string) (*Entity, error)
	Delete(ctx context.Context, table, partitionKey, rowKey string) error
}

func newETag() string {
	return uuid.NewString()
}

func matches(stored, expected string) bool {
	return expected == AnyETag || expected == stored
}

// NewEntity marshals v as the payload of the entity keyed by pk/rk.
func NewEntity(pk, rk, etag string, v any) (Entity, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Entity{}, err
	}
	return Entity{PartitionKey: pk, RowKey: rk, ETag: etag, Data: data}, nil
}

// Decode unmarshals the entity payload into a T.
func Decode[T any](e Entity) (T, error) {
	var v T
	err := json.Unmarshal(e.Data, &v)
	return v, err
}
