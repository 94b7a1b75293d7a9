package product

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores products. Update is guarded by the product's ETag and
// fails with domain.ErrConcurrencyConflict when it is stale.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
