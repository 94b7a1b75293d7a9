package cart

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

// ProductSource fetches the current catalog entry for a product.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// StockValidator checks a requested quantity against live stock. It never caches.
type StockValidator struct {
	products ProductSource
}

func NewStockValidator(products ProductSource) *StockValidator {
	return &StockValidator{products: products}
}

// Validate returns the freshly fetched product when requested units are available,
// or a *domain.InsufficientStockError carrying the available count.
func (v *StockValidator) Validate(ctx context.Context, productID string, requested int) (*domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.Invalid("productId", "is required")
	}
	if err := domain.ValidateQuantity(requested); err != nil {
		return nil, err
	}
	p, err := v.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.StockAvailable < requested {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: p.StockAvailable,
		}
	}
	return p, nil
}
