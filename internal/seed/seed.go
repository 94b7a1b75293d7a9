package seed

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"

	"go.uber.org/zap"
)

type productCreator interface {
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
}

type customerCreator interface {
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
}

// Products and Customers are the demo catalog. Customer IDs double as buyer IDs,
// so "demo-buyer" can be sent as X-Buyer-ID right away.
var (
	Products = []productsvc.Input{
		{ID: "demo-shirt", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", PriceCents: 1999, StockAvailable: 25},
		{ID: "demo-mug", Name: "Demo Mug", Description: "Ceramic mug with demo logo", PriceCents: 1299, StockAvailable: 40},
		{ID: "demo-poster", Name: "Demo Poster", Description: "Limited print, only a few left", PriceCents: 850, StockAvailable: 2},
	}
	Customers = []customersvc.Input{
		{ID: "demo-buyer", Name: "Demo", Surname: "Buyer", Username: "demo", Email: "demo@example.com", ShippingAddress: "1 Demo Street"},
		{ID: "demo-buyer-2", Name: "Second", Surname: "Buyer", Username: "second", Email: "second@example.com"},
	}
)

// Apply inserts the demo data for manual testing. Records that already exist
// are left untouched, so it is safe to run repeatedly.
func Apply(ctx context.Context, products productCreator, customers customerCreator, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	created := 0
	for _, p := range Products {
		_, err := products.Create(ctx, p)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Debug("seed: product exists", zap.String("id", p.ID))
		case err != nil:
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		default:
			created++
		}
	}
	for _, c := range Customers {
		_, err := customers.Create(ctx, c)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Debug("seed: customer exists", zap.String("id", c.ID))
		case err != nil:
			return fmt.Errorf("seed customer %s: %w", c.ID, err)
		default:
			created++
		}
	}
	logger.Info("seed: applied", zap.Int("created", created))
	return nil
}
