package cart

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestMemory_Contract(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestPostgres_Contract(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	exerciseRepository(t, NewPostgres(pool, nil))
}

func TestPostgres_ConcurrentCreateActiveConverges(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	ids := make([]string, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := repo.CreateActive(ctx, "buyer-race")
			if err != nil {
				t.Errorf("CreateActive: %v", err)
				return
			}
			ids[i] = c.ID
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("expected a single active cart, got %v", ids)
		}
	}
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.GetActiveByBuyer(ctx, "buyer-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found before creation, got %v", err)
	}

	created, err := repo.CreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("CreateActive: %v", err)
	}
	again, err := repo.CreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("CreateActive again: %v", err)
	}
	if again.ID != created.ID || created.Status != domain.CartActive {
		t.Fatalf("expected same active cart, got %+v and %+v", created, again)
	}

	line := domain.CartLine{ProductID: "p1", ProductName: "Mug", UnitPriceCents: 1000, Quantity: 1}
	if err := repo.AddLineItem(ctx, created.ID, line); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	line.Quantity = 2
	if err := repo.AddLineItem(ctx, created.ID, line); err != nil {
		t.Fatalf("AddLineItem merge: %v", err)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(fetched.Lines) != 1 || fetched.Lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line with qty 3, got %+v", fetched.Lines)
	}
	lineID := fetched.Lines[0].ID

	if err := repo.ChangeLineItemQuantity(ctx, created.ID, lineID, 0); err == nil {
		t.Fatalf("expected validation error for zero quantity")
	}
	if err := repo.ChangeLineItemQuantity(ctx, created.ID, lineID, 5); err != nil {
		t.Fatalf("ChangeLineItemQuantity: %v", err)
	}
	if err := repo.RemoveLineItem(ctx, created.ID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown line, got %v", err)
	}

	if err := repo.AddLineItem(ctx, created.ID, domain.CartLine{ProductID: "p2", ProductName: "Cup", UnitPriceCents: 250, Quantity: 1}); err != nil {
		t.Fatalf("AddLineItem second product: %v", err)
	}
	fetched, _ = repo.GetByID(ctx, created.ID)
	if fetched.TotalItems() != 6 {
		t.Fatalf("expected 6 items, got %d", fetched.TotalItems())
	}
	if err := repo.RemoveLineItem(ctx, created.ID, lineID); err != nil {
		t.Fatalf("RemoveLineItem: %v", err)
	}

	if err := repo.CompleteCheckout(ctx, created.ID); err != nil {
		t.Fatalf("CompleteCheckout: %v", err)
	}
	done, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID after checkout: %v", err)
	}
	if done.Status != domain.CartCheckedOut || len(done.Lines) != 0 {
		t.Fatalf("expected checked out empty cart, got %+v", done)
	}
	if err := repo.CompleteCheckout(ctx, created.ID); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict on second checkout, got %v", err)
	}

	next, err := repo.CreateActive(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("CreateActive after checkout: %v", err)
	}
	if next.ID == created.ID {
		t.Fatalf("expected a fresh cart after checkout")
	}
	if err := repo.SetStatus(ctx, next.ID, domain.CartAbandoned); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := repo.GetActiveByBuyer(ctx, "buyer-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no active cart after abandon, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, carts CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}
