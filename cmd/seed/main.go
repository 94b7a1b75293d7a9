package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/platform"
	custrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("seed")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	res := platform.NewResources(cfg, logger)
	defer res.Close()

	store, err := res.TableStore(ctx)
	if err != nil {
		logger.Fatal("open table store", zap.Error(err))
	}
	products := productsvc.New(productrepo.NewTable(store, logger))
	customers := customersvc.New(custrepo.NewTable(store, logger))

	if err := seed.Apply(ctx, products, customers, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
