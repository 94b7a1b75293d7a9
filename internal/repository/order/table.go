package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/tablestore"

	"go.uber.org/zap"
)

const (
	Table        = "Orders"
	PartitionKey = "Order"
)

type record struct {
	CustomerID      string    `json:"customerId"`
	Username        string    `json:"username"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	OrderDate       time.Time `json:"orderDate"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int64     `json:"unitPriceCents"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	Status          string    `json:"status"`
}

type tableRepo struct {
	store  tablestore.Store
	logger *zap.Logger
}

// NewTable returns a Repository backed by the table store.
func NewTable(store tablestore.Store, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tableRepo{store: store, logger: logger}
}

func (r *tableRepo) List(ctx context.Context) ([]domain.Order, error) {
	entities, err := r.store.List(ctx, Table, PartitionKey)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(entities))
	for _, e := range entities {
		o, err := fromEntity(e)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *tableRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	e, err := r.store.Get(ctx, Table, PartitionKey, id)
	if err != nil {
		return nil, err
	}
	return fromEntity(*e)
}

func (r *tableRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	e, err := toEntity(o)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Insert(ctx, Table, e)
	if err != nil {
		r.logger.Warn("order repo: create", zap.String("id", o.ID), zap.Error(err))
		return nil, err
	}
	return fromEntity(*stored)
}

func (r *tableRepo) Update(ctx context.Context, o domain.Order) (*domain.Order, error) {
	e, err := toEntity(o)
	if err != nil {
		return nil, err
	}
	etag := o.ETag
	if etag == "" {
		etag = tablestore.AnyETag
	}
	stored, err := r.store.Update(ctx, Table, e, etag)
	if err != nil {
		if errors.Is(err, tablestore.ErrConflict) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, err
	}
	return fromEntity(*stored)
}

func (r *tableRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Table, PartitionKey, id)
}

func toEntity(o domain.Order) (tablestore.Entity, error) {
	return tablestore.NewEntity(PartitionKey, o.ID, o.ETag, record{
		CustomerID:      o.CustomerID,
		Username:        o.Username,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		OrderDate:       o.OrderDate.UTC(),
		Quantity:        o.Quantity,
		UnitPriceCents:  o.UnitPriceCents,
		TotalPriceCents: o.TotalPriceCents,
		Status:          string(o.Status),
	})
}

func fromEntity(e tablestore.Entity) (*domain.Order, error) {
	rec, err := tablestore.Decode[record](e)
	if err != nil {
		return nil, fmt.Errorf("decode order %s: %w", e.RowKey, err)
	}
	return &domain.Order{
		ID:              e.RowKey,
		CustomerID:      rec.CustomerID,
		Username:        rec.Username,
		ProductID:       rec.ProductID,
		ProductName:     rec.ProductName,
		OrderDate:       rec.OrderDate,
		Quantity:        rec.Quantity,
		UnitPriceCents:  rec.UnitPriceCents,
		TotalPriceCents: rec.TotalPriceCents,
		Status:          domain.OrderStatus(rec.Status),
		ETag:            e.ETag,
	}, nil
}
