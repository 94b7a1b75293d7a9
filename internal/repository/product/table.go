package product

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/tablestore"

	"go.uber.org/zap"
)

const (
	Table        = "Products"
	PartitionKey = "Product"
)

type record struct {
	ProductName    string `json:"productName"`
	Description    string `json:"description"`
	PriceCents     int64  `json:"priceCents"`
	StockAvailable int    `json:"stockAvailable"`
	ImageURL       string `json:"imageUrl"`
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

func (r *tableRepo) List(ctx context.Context) ([]domain.Product, error) {
	entities, err := r.store.List(ctx, Table, PartitionKey)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(entities))
	for _, e := range entities {
		p, err := fromEntity(e)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(out)))
	return out, nil
}

func (r *tableRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	e, err := r.store.Get(ctx, Table, PartitionKey, id)
	if err != nil {
		return nil, err
	}
	return fromEntity(*e)
}

func (r *tableRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	e, err := toEntity(p)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Insert(ctx, Table, e)
	if err != nil {
		r.logger.Warn("product repo: create", zap.String("id", p.ID), zap.Error(err))
		return nil, err
	}
	return fromEntity(*stored)
}

func (r *tableRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	e, err := toEntity(p)
	if err != nil {
		return nil, err
	}
	etag := p.ETag
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

func toEntity(p domain.Product) (tablestore.Entity, error) {
	return tablestore.NewEntity(PartitionKey, p.ID, p.ETag, record{
		ProductName:    p.Name,
		Description:    p.Description,
		PriceCents:     p.PriceCents,
		StockAvailable: p.StockAvailable,
		ImageURL:       p.ImageURL,
	})
}

func fromEntity(e tablestore.Entity) (*domain.Product, error) {
	rec, err := tablestore.Decode[record](e)
	if err != nil {
		return nil, fmt.Errorf("decode product %s: %w", e.RowKey, err)
	}
	return &domain.Product{
		ID:             e.RowKey,
		Name:           rec.ProductName,
		Description:    rec.Description,
		PriceCents:     rec.PriceCents,
		StockAvailable: rec.StockAvailable,
		ImageURL:       rec.ImageURL,
		ETag:           e.ETag,
	}, nil
}
