package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/tablestore"
)

func TestCreateValidates(t *testing.T) {
	svc := New(productrepo.NewTable(tablestore.NewMemory(), nil))
	cases := []Input{
		{Name: " "},
		{Name: "Mug", PriceCents: -1},
		{Name: "Mug", StockAvailable: -3},
	}
	for _, in := range cases {
		var verr *domain.ValidationError
		if _, err := svc.Create(context.Background(), in); !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestCreateAssignsIDAndUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	svc := New(productrepo.NewTable(tablestore.NewMemory(), nil))

	created, err := svc.Create(ctx, Input{Name: "Mug", PriceCents: 1000, StockAvailable: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Big Mug", PriceCents: 1200, StockAvailable: 7})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Big Mug" || updated.StockAvailable != 7 {
		t.Fatalf("unexpected product %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", Input{Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
