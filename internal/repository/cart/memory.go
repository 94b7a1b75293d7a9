package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

// NewMemory returns a process-local Repository with the same semantics as the Postgres one.
func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]*domain.Cart)}
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyCart(c), nil
}

func (r *memoryRepo) GetActiveByBuyer(_ context.Context, buyerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.activeLocked(buyerID); c != nil {
		return copyCart(c), nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) CreateActive(_ context.Context, buyerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.activeLocked(buyerID); c != nil {
		return copyCart(c), nil
	}
	now := time.Now().UTC()
	c := &domain.Cart{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Status:    domain.CartActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.carts[c.ID] = c
	return copyCart(c), nil
}

func (r *memoryRepo) AddLineItem(_ context.Context, cartID string, line domain.CartLine) error {
	if err := domain.ValidateQuantity(line.Quantity); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	if existing := c.LineForProduct(line.ProductID); existing != nil {
		existing.Quantity += line.Quantity
	} else {
		line.ID = uuid.NewString()
		line.CartID = cartID
		line.AddedAt = now
		c.Lines = append(c.Lines, line)
	}
	c.UpdatedAt = now
	return nil
}

func (r *memoryRepo) ChangeLineItemQuantity(_ context.Context, cartID, lineID string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	line := c.FindLine(lineID)
	if line == nil {
		return domain.ErrNotFound
	}
	line.Quantity = quantity
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) RemoveLineItem(_ context.Context, cartID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) SetStatus(_ context.Context, cartID string, status domain.CartStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) CompleteCheckout(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok || c.Status != domain.CartActive {
		return domain.ErrConcurrencyConflict
	}
	c.Lines = nil
	c.Status = domain.CartCheckedOut
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) activeLocked(buyerID string) *domain.Cart {
	for _, c := range r.carts {
		if c.BuyerID == buyerID && c.Status == domain.CartActive {
			return c
		}
	}
	return nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &out
}
