package tablestore

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call on next by timeout. Calls that run out of
// time fail with domain.ErrUpstreamUnavailable. A non-positive timeout
// returns next unchanged.
func WithTimeout(next Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return next
	}
	return &timeoutStore{next: next, timeout: timeout}
}

func (s *timeoutStore) Get(ctx context.Context, table, pk, rk string) (*Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	e, err := s.next.Get(ctx, table, pk, rk)
	return e, domain.DeadlineExceeded("table store get "+table, err)
}

func (s *timeoutStore) List(ctx context.Context, table, pk string) ([]Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.next.List(ctx, table, pk)
	return out, domain.DeadlineExceeded("table store list "+table, err)
}

func (s *timeoutStore) Insert(ctx context.Context, table string, e Entity) (*Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.next.Insert(ctx, table, e)
	return out, domain.DeadlineExceeded("table store insert "+table, err)
}

func (s *timeoutStore) Update(ctx context.Context, table string, e Entity, expectedETag string) (*Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.next.Update(ctx, table, e, expectedETag)
	return out, domain.DeadlineExceeded("table store update "+table, err)
}

func (s *timeoutStore) Delete(ctx context.Context, table, pk, rk string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return domain.DeadlineExceeded("table store delete "+table, s.next.Delete(ctx, table, pk, rk))
}
