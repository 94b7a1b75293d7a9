package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	updatedByOrder  = "Order System"
	updatedByCancel = "Order Cancellation"
	updatedBySystem = "System"
)

type orderRepo interface {
	List(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	Update(ctx context.Context, o domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type notifier interface {
	OrderCreated(ctx context.Context, o domain.Order, c domain.Customer)
	StockChanged(ctx context.Context, p domain.Product, previous, next int, updatedBy string)
	OrderStatusChanged(ctx context.Context, o domain.Order, customerName string, previous domain.OrderStatus, updatedBy string)
}

// RetryPolicy bounds the optimistic-concurrency loop on product stock.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialInterval: 20 * time.Millisecond, MaxInterval: 500 * time.Millisecond}
}

// Service creates orders and keeps product stock in step with them.
type Service struct {
	orders    orderRepo
	products  productRepo
	customers customerRepo
	notifier  notifier
	logger    *zap.Logger
	metrics   *metrics.Workflow
	retry     RetryPolicy
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) {
		if p.MaxAttempts > 0 {
			s.retry = p
		}
	}
}

func WithMetrics(m *metrics.Workflow) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(orders orderRepo, products productRepo, customers customerRepo, n notifier, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		notifier:  n,
		logger:    zap.NewNop(),
		retry:     DefaultRetryPolicy(),
		tracer:    otel.Tracer("storefront/service/order"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// Create places one order: it reserves stock with an ETag-guarded decrement,
// then writes the order. A failed order write gives the stock back. When
// req.ID names an existing order, that order is returned unchanged.
func (s *Service) Create(ctx context.Context, req domain.OrderRequest) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.Create", trace.WithAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.Int("order.quantity", req.Quantity),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, domain.Invalid("customerId", "is required")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, domain.Invalid("productId", "is required")
	}
	if err := domain.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		existing, err := s.orders.GetByID(ctx, id)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load order %s: %w", id, err)
		}
	} else {
		id = uuid.NewString()
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}

	product, previous, err := s.adjustStock(ctx, req.ProductID, -req.Quantity)
	if err != nil {
		return nil, err
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}
	created, err := s.orders.Create(ctx, domain.Order{
		ID:              id,
		CustomerID:      customer.ID,
		Username:        customer.Username,
		ProductID:       product.ID,
		ProductName:     product.Name,
		OrderDate:       orderDate.UTC(),
		Quantity:        req.Quantity,
		UnitPriceCents:  product.PriceCents,
		TotalPriceCents: product.PriceCents * int64(req.Quantity),
		Status:          domain.OrderSubmitted,
	})
	if err != nil {
		if _, _, restoreErr := s.adjustStock(context.WithoutCancel(ctx), req.ProductID, req.Quantity); restoreErr != nil {
			s.logger.Error("order: stock restore after failed insert",
				zap.String("product_id", req.ProductID), zap.Int("quantity", req.Quantity), zap.Error(restoreErr))
			return nil, errors.Join(fmt.Errorf("create order: %w", err), restoreErr)
		}
		if errors.Is(err, domain.ErrAlreadyExists) && req.ID != "" {
			// A concurrent request with the same ID won the insert.
			return s.orders.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order: created",
		zap.String("order_id", created.ID), zap.String("product_id", product.ID),
		zap.Int("quantity", created.Quantity), zap.Int("stock", product.StockAvailable))

	s.notifier.OrderCreated(ctx, *created, *customer)
	s.notifier.StockChanged(ctx, *product, previous, product.StockAvailable, updatedByOrder)
	return created, nil
}

// Cancel marks the order Cancelled and returns its quantity to stock. Cancelling
// an already-cancelled order is a no-op.
func (s *Service) Cancel(ctx context.Context, id string) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.Cancel", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderCancelled {
		return o, nil
	}

	previous := o.Status
	o.Status = domain.OrderCancelled
	// The ETag guard on the status write keeps two concurrent cancels from restocking twice.
	updated, err := s.orders.Update(ctx, *o)
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", id, err)
	}

	product, prevStock, err := s.adjustStock(ctx, o.ProductID, o.Quantity)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn("order: cancelled order references deleted product", zap.String("order_id", id), zap.String("product_id", o.ProductID))
	case err != nil:
		s.logger.Error("order: restock on cancel", zap.String("order_id", id), zap.Error(err))
		cause := fmt.Errorf("restock for order %s: %w", id, err)
		// Put the previous status back so a retried cancel restocks again.
		revert := *updated
		revert.Status = previous
		if _, revertErr := s.orders.Update(context.WithoutCancel(ctx), revert); revertErr != nil {
			s.logger.Error("order: revert status after failed restock", zap.String("order_id", id), zap.Error(revertErr))
			return nil, errors.Join(cause, fmt.Errorf("revert order %s status: %w", id, revertErr))
		}
		return nil, cause
	default:
		s.notifier.StockChanged(ctx, *product, prevStock, product.StockAvailable, updatedByCancel)
	}

	s.notifier.OrderStatusChanged(ctx, *updated, s.customerName(ctx, updated.CustomerID), previous, updatedBySystem)
	return updated, nil
}

// UpdateStatus overwrites the status without transition checks. An empty status means Submitted.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if strings.TrimSpace(string(status)) == "" {
		status = domain.OrderSubmitted
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := o.Status
	o.Status = status
	updated, err := s.orders.Update(ctx, *o)
	if err != nil {
		return nil, err
	}
	s.notifier.OrderStatusChanged(ctx, *updated, s.customerName(ctx, updated.CustomerID), previous, updatedBySystem)
	return updated, nil
}

// adjustStock applies delta to the product's stock with bounded retries on
// ETag conflicts. It returns the updated product and the stock before the write.
func (s *Service) adjustStock(ctx context.Context, productID string, delta int) (*domain.Product, int, error) {
	var previous int
	attempt := 0
	op := func() (*domain.Product, error) {
		attempt++
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		next := p.StockAvailable + delta
		if next < 0 {
			return nil, backoff.Permanent(&domain.InsufficientStockError{
				ProductID: productID,
				Requested: -delta,
				Available: p.StockAvailable,
			})
		}
		previous = p.StockAvailable
		p.StockAvailable = next
		updated, err := s.products.Update(ctx, *p)
		if err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				s.metrics.StockConflict()
				s.logger.Debug("order: stock write conflict", zap.String("product_id", productID), zap.Int("attempt", attempt))
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return updated, nil
	}

	product, err := backoff.RetryWithData[*domain.Product](op, s.backoff(ctx))
	if err != nil {
		return nil, 0, err
	}
	return product, previous, nil
}

func (s *Service) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retry.InitialInterval
	exp.MaxInterval = s.retry.MaxInterval
	exp.MaxElapsedTime = 0
	retries := s.retry.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func (s *Service) customerName(ctx context.Context, id string) string {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return c.FullName()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
