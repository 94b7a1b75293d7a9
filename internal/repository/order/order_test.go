package order

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/tablestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RoundTripsOrderFields(t *testing.T) {
	ctx := context.Background()
	repo := NewTable(tablestore.NewMemory(), nil)
	date := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	_, err := repo.Create(ctx, domain.Order{
		ID:              "o1",
		CustomerID:      "c1",
		Username:        "ada",
		ProductID:       "p1",
		ProductName:     "Mug",
		OrderDate:       date,
		Quantity:        2,
		UnitPriceCents:  1000,
		TotalPriceCents: 2000,
		Status:          domain.OrderSubmitted,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, date, got.OrderDate)
	assert.Equal(t, int64(2000), got.TotalPriceCents)
	assert.Equal(t, domain.OrderSubmitted, got.Status)

	got.Status = domain.OrderCompleted
	updated, err := repo.Update(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, updated.Status)

	_, err = repo.Update(ctx, *got)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}
