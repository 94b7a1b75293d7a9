package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores orders. Only Status is expected to change after creation.
type Repository interface {
	List(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	Update(ctx context.Context, o domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
