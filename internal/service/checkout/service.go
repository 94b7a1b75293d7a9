// Package checkout turns a buyer's active cart into orders, one per line.
// The conversion is all-or-nothing: orders created before a failure are cancelled.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	PaymentOnline = "Online"

	onlineInstructions = "Please upload your proof of payment in the Upload section."
	cashInstructions   = "Please have cash ready for payment on delivery/collection."
)

type cartStore interface {
	GetActiveByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error)
	CompleteCheckout(ctx context.Context, cartID string) error
}

type stockValidator interface {
	Validate(ctx context.Context, productID string, requested int) (*domain.Product, error)
}

// OrderPlacer is the functions-tier surface checkout needs.
type OrderPlacer interface {
	GetCustomer(ctx context.Context, buyerID string) (*domain.Customer, error)
	UpdateShippingAddress(ctx context.Context, customerID, address string) error
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

type Input struct {
	ShippingAddress string
	PaymentMethod   string
}

type Result struct {
	CartID        string
	Orders        []domain.Order
	TotalCents    int64
	PaymentMethod string
	Message       string
}

type Service struct {
	carts   cartStore
	stock   stockValidator
	placer  OrderPlacer
	logger  *zap.Logger
	metrics *metrics.Workflow
	tracer  trace.Tracer
	now     func() time.Time
}

func New(carts cartStore, stock stockValidator, placer OrderPlacer, logger *zap.Logger, m *metrics.Workflow) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:   carts,
		stock:   stock,
		placer:  placer,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("storefront/service/checkout"),
		now:     time.Now,
	}
}

type compensation struct {
	orderID string
}

func (s *Service) Checkout(ctx context.Context, buyerID string, in Input) (_ *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout", trace.WithAttributes(attribute.String("buyer.id", buyerID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.CheckoutOutcome(outcome(err))
	}()

	if strings.TrimSpace(buyerID) == "" {
		return nil, domain.Invalid("buyerId", "is required")
	}

	cart, err := s.carts.GetActiveByBuyer(ctx, buyerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	span.SetAttributes(attribute.String("cart.id", cart.ID), attribute.Int("cart.lines", len(cart.Lines)))

	customer, err := s.placer.GetCustomer(ctx, buyerID)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	if addr := strings.TrimSpace(in.ShippingAddress); addr != "" && addr != customer.ShippingAddress {
		if err := s.placer.UpdateShippingAddress(ctx, customer.ID, addr); err != nil {
			s.logger.Warn("checkout: shipping address update failed", zap.String("customer_id", customer.ID), zap.Error(err))
		}
	}

	orderDate := s.now().UTC()
	var (
		orders []domain.Order
		undo   []compensation
		total  int64
	)
	for _, line := range cart.Lines {
		if _, err := s.stock.Validate(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, s.rollback(ctx, cart.ID, undo, fmt.Errorf("line %s: %w", line.ID, err))
		}
		orderID := uuid.NewString()
		// Registered before the call: the order may exist even when the response is lost.
		undo = append(undo, compensation{orderID: orderID})
		o, err := s.placer.CreateOrder(ctx, domain.OrderRequest{
			ID:         orderID,
			CustomerID: customer.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			OrderDate:  orderDate,
		})
		if err != nil {
			return nil, s.rollback(ctx, cart.ID, undo, fmt.Errorf("line %s: %w", line.ID, err))
		}
		orders = append(orders, *o)
		total += o.TotalPriceCents
	}

	if err := s.carts.CompleteCheckout(ctx, cart.ID); err != nil {
		return nil, s.rollback(ctx, cart.ID, undo, fmt.Errorf("complete cart: %w", err))
	}

	s.logger.Info("checkout: completed",
		zap.String("cart_id", cart.ID), zap.String("buyer_id", buyerID),
		zap.Int("orders", len(orders)), zap.Int64("total_cents", total))

	return &Result{
		CartID:        cart.ID,
		Orders:        orders,
		TotalCents:    total,
		PaymentMethod: in.PaymentMethod,
		Message:       PaymentInstructions(in.PaymentMethod),
	}, nil
}

// rollback cancels already-created orders newest first. An order that was
// never written counts as undone. Compensation errors are joined onto cause.
func (s *Service) rollback(ctx context.Context, cartID string, undo []compensation, cause error) error {
	if len(undo) == 0 {
		return cause
	}
	ctx = context.WithoutCancel(ctx)
	errs := []error{cause}
	for i := len(undo) - 1; i >= 0; i-- {
		err := s.placer.CancelOrder(ctx, undo[i].orderID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.Error("checkout: compensation failed",
				zap.String("cart_id", cartID), zap.String("order_id", undo[i].orderID), zap.Error(err))
			errs = append(errs, fmt.Errorf("cancel order %s: %w", undo[i].orderID, err))
			continue
		}
		s.logger.Info("checkout: order cancelled", zap.String("cart_id", cartID), zap.String("order_id", undo[i].orderID))
	}
	return errors.Join(errs...)
}

// PaymentInstructions returns the buyer-facing message for the chosen payment method.
func PaymentInstructions(method string) string {
	if strings.EqualFold(strings.TrimSpace(method), PaymentOnline) {
		return onlineInstructions
	}
	return cashInstructions
}

func outcome(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrCustomerNotFound):
		return "no_customer"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
