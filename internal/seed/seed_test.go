package seed

import (
	"context"
	"testing"

	custrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"
	"storefront/internal/tablestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	products := productsvc.New(productrepo.NewTable(store, nil))
	customers := customersvc.New(custrepo.NewTable(store, nil))

	require.NoError(t, Apply(ctx, products, customers, nil))
	require.NoError(t, Apply(ctx, products, customers, nil))

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(Products))

	buyer, err := customers.GetByBuyerID(ctx, "demo-buyer")
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", buyer.Email)
}
