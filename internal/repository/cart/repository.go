package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists carts and their lines. Every mutation stamps the cart's updated_at.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error)
	// CreateActive returns the buyer's active cart, inserting one if none exists.
	CreateActive(ctx context.Context, buyerID string) (*domain.Cart, error)
	// AddLineItem inserts line, or adds its quantity to the existing line for the same product.
	AddLineItem(ctx context.Context, cartID string, line domain.CartLine) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLineItem(ctx context.Context, cartID, lineID string) error
	SetStatus(ctx context.Context, cartID string, status domain.CartStatus) error
	// CompleteCheckout clears the lines and marks the cart CheckedOut in one transaction.
	// It fails with domain.ErrConcurrencyConflict when the cart is no longer Active.
	CompleteCheckout(ctx context.Context, cartID string) error
}
