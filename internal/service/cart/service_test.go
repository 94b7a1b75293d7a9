package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type stubProducts struct {
	products map[string]domain.Product
	calls    int
	err      error
}

func (s *stubProducts) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func newService(stock int) (*Service, *stubProducts) {
	products := &stubProducts{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Mug", PriceCents: 1000, StockAvailable: stock},
	}}
	return New(cartrepo.NewMemory(), products, nil), products
}

func TestGetOrCreateActiveIsStable(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()

	first, err := svc.GetOrCreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	second, err := svc.GetOrCreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("GetOrCreateActive again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same cart id, got %s and %s", first.ID, second.ID)
	}
	if _, err := svc.GetOrCreateActive(ctx, " "); err == nil {
		t.Fatalf("expected error for blank buyer")
	}
}

func TestAddItemTwiceMergesLine(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "buyer-1", "p1", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.AddItem(ctx, "buyer-1", "p1", 2)
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected single line with qty 3, got %+v", cart.Lines)
	}
	if cart.Lines[0].ProductName != "Mug" || cart.Lines[0].UnitPriceCents != 1000 {
		t.Fatalf("expected name/price snapshot, got %+v", cart.Lines[0])
	}
}

func TestAddItemChecksCombinedQuantity(t *testing.T) {
	svc, _ := newService(3)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "buyer-1", "p1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err := svc.AddItem(ctx, "buyer-1", "p1", 2)
	stockErr, ok := domain.IsInsufficientStock(err)
	if !ok {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if stockErr.Requested != 4 || stockErr.Available != 3 {
		t.Fatalf("unexpected error detail %+v", stockErr)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, products := newService(5)
	_, err := svc.AddItem(context.Background(), "buyer-1", "p1", 0)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if products.calls != 0 {
		t.Fatalf("expected no product lookup, got %d", products.calls)
	}
}

func TestUpdateQuantityOverStockLeavesLineUnchanged(t *testing.T) {
	svc, products := newService(5)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "buyer-1", "p1", 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lineID := cart.Lines[0].ID

	p := products.products["p1"]
	p.StockAvailable = 3
	products.products["p1"] = p

	if _, err := svc.UpdateQuantity(ctx, "buyer-1", lineID, 4); err == nil {
		t.Fatalf("expected insufficient stock")
	} else if stockErr, ok := domain.IsInsufficientStock(err); !ok || stockErr.Available != 3 {
		t.Fatalf("expected insufficient stock with available=3, got %v", err)
	}

	count, err := svc.ItemCount(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("ItemCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected quantity to stay 2, got %d", count)
	}

	if _, err := svc.UpdateQuantity(ctx, "buyer-1", lineID, 0); err == nil {
		t.Fatalf("expected validation error for zero quantity")
	}
	updated, err := svc.UpdateQuantity(ctx, "buyer-1", lineID, 3)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if updated.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", updated.Lines[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "buyer-1", "p1", 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, "buyer-1", "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	cart, err = svc.RemoveItem(ctx, "buyer-1", cart.Lines[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Lines)
	}
}

func TestItemCountWithoutCart(t *testing.T) {
	svc, _ := newService(5)
	count, err := svc.ItemCount(context.Background(), "nobody")
	if err != nil || count != 0 {
		t.Fatalf("expected 0, nil; got %d, %v", count, err)
	}
}

func TestViewIncludesLiveStock(t *testing.T) {
	svc, products := newService(5)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "buyer-1", "p1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	p := products.products["p1"]
	p.StockAvailable = 1
	products.products["p1"] = p

	view, err := svc.View(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.TotalCents != 2000 || len(view.Lines) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Lines[0].Available || view.Lines[0].StockAvailable != 1 {
		t.Fatalf("expected line flagged unavailable, got %+v", view.Lines[0])
	}
}

func TestAbandon(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()
	first, err := svc.GetOrCreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	if err := svc.Abandon(ctx, "buyer-1"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	next, err := svc.GetOrCreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("GetOrCreateActive after abandon: %v", err)
	}
	if next.ID == first.ID {
		t.Fatalf("expected a new cart after abandon")
	}
}

func TestStockValidatorFetchesEveryTime(t *testing.T) {
	_, products := newService(5)
	v := NewStockValidator(products)
	for i := 0; i < 3; i++ {
		if _, err := v.Validate(context.Background(), "p1", 5); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	}
	if products.calls != 3 {
		t.Fatalf("expected 3 lookups, got %d", products.calls)
	}
	if _, err := v.Validate(context.Background(), "missing", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
