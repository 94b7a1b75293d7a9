package cart

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type timeoutRepo struct {
	next    Repository
	timeout time.Duration
}

// WithTimeout bounds every call on next by timeout. Calls that run out of
// time fail with domain.ErrUpstreamUnavailable.
func WithTimeout(next Repository, timeout time.Duration) Repository {
	if timeout <= 0 {
		return next
	}
	return &timeoutRepo{next: next, timeout: timeout}
}

func (r *timeoutRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	c, err := r.next.GetByID(ctx, id)
	return c, domain.DeadlineExceeded("cart get", err)
}

func (r *timeoutRepo) GetActiveByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	c, err := r.next.GetActiveByBuyer(ctx, buyerID)
	return c, domain.DeadlineExceeded("cart get active", err)
}

func (r *timeoutRepo) CreateActive(ctx context.Context, buyerID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	c, err := r.next.CreateActive(ctx, buyerID)
	return c, domain.DeadlineExceeded("cart create", err)
}

func (r *timeoutRepo) AddLineItem(ctx context.Context, cartID string, line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return domain.DeadlineExceeded("cart add line", r.next.AddLineItem(ctx, cartID, line))
}

func (r *timeoutRepo) ChangeLineItemQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return domain.DeadlineExceeded("cart change line", r.next.ChangeLineItemQuantity(ctx, cartID, lineID, quantity))
}

func (r *timeoutRepo) RemoveLineItem(ctx context.Context, cartID, lineID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return domain.DeadlineExceeded("cart remove line", r.next.RemoveLineItem(ctx, cartID, lineID))
}

func (r *timeoutRepo) SetStatus(ctx context.Context, cartID string, status domain.CartStatus) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return domain.DeadlineExceeded("cart set status", r.next.SetStatus(ctx, cartID, status))
}

func (r *timeoutRepo) CompleteCheckout(ctx context.Context, cartID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return domain.DeadlineExceeded("cart complete checkout", r.next.CompleteCheckout(ctx, cartID))
}
