package domain

import (
	"errors"
	"testing"
)

func TestCartTotals(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{ID: "a", ProductID: "p1", UnitPriceCents: 1000, Quantity: 2},
		{ID: "b", ProductID: "p2", UnitPriceCents: 250, Quantity: 3},
	}}
	if got := c.TotalCents(); got != 2750 {
		t.Fatalf("expected total 2750, got %d", got)
	}
	if got := c.TotalItems(); got != 5 {
		t.Fatalf("expected 5 items, got %d", got)
	}
	if l := c.LineForProduct("p2"); l == nil || l.ID != "b" {
		t.Fatalf("unexpected line %+v", l)
	}
	if c.FindLine("missing") != nil {
		t.Fatalf("expected nil for missing line")
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, q := range []int{0, -1} {
		err := ValidateQuantity(q)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "quantity" {
			t.Fatalf("expected validation error for %d, got %v", q, err)
		}
	}
	if err := ValidateQuantity(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMoneyRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 999, 1000, 123456} {
		if got := AmountToCents(CentsToAmount(cents)); got != cents {
			t.Fatalf("round trip %d -> %d", cents, got)
		}
	}
}
