package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/tablestore"
)

func TestTable_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewTable(tablestore.NewMemory(), nil)

	created, err := repo.Create(ctx, domain.Product{ID: "p1", Name: "Mug", PriceCents: 1000, StockAvailable: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ETag == "" {
		t.Fatalf("expected etag on created product")
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Mug" || got.PriceCents != 1000 || got.StockAvailable != 5 {
		t.Fatalf("unexpected product %+v", got)
	}

	got.StockAvailable = 4
	updated, err := repo.Update(ctx, *got)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StockAvailable != 4 || updated.ETag == got.ETag {
		t.Fatalf("unexpected update result %+v", updated)
	}

	// got still carries the pre-update etag.
	if _, err := repo.Update(ctx, *got); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one product, got %v err=%v", list, err)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
