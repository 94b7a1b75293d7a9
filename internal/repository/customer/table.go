package customer

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/tablestore"

	"go.uber.org/zap"
)

const (
	Table        = "Customers"
	PartitionKey = "Customer"
)

type record struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
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

func (r *tableRepo) List(ctx context.Context) ([]domain.Customer, error) {
	entities, err := r.store.List(ctx, Table, PartitionKey)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(entities))
	for _, e := range entities {
		c, err := fromEntity(e)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *tableRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	e, err := r.store.Get(ctx, Table, PartitionKey, id)
	if err != nil {
		return nil, err
	}
	return fromEntity(*e)
}

func (r *tableRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	e, err := toEntity(c)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Insert(ctx, Table, e)
	if err != nil {
		r.logger.Warn("customer repo: create", zap.String("id", c.ID), zap.Error(err))
		return nil, err
	}
	return fromEntity(*stored)
}

func (r *tableRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	e, err := toEntity(c)
	if err != nil {
		return nil, err
	}
	etag := c.ETag
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

func toEntity(c domain.Customer) (tablestore.Entity, error) {
	return tablestore.NewEntity(PartitionKey, c.ID, c.ETag, record{
		Name:            c.Name,
		Surname:         c.Surname,
		Username:        c.Username,
		Email:           c.Email,
		ShippingAddress: c.ShippingAddress,
	})
}

func fromEntity(e tablestore.Entity) (*domain.Customer, error) {
	rec, err := tablestore.Decode[record](e)
	if err != nil {
		return nil, fmt.Errorf("decode customer %s: %w", e.RowKey, err)
	}
	return &domain.Customer{
		ID:              e.RowKey,
		Name:            rec.Name,
		Surname:         rec.Surname,
		Username:        rec.Username,
		Email:           rec.Email,
		ShippingAddress: rec.ShippingAddress,
		ETag:            e.ETag,
	}, nil
}
