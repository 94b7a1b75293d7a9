package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

type Service struct {
	repo     cartRepo
	stock    *StockValidator
	products ProductSource
	logger   *zap.Logger
}

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error)
	CreateActive(ctx context.Context, buyerID string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID string, line domain.CartLine) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLineItem(ctx context.Context, cartID, lineID string) error
	SetStatus(ctx context.Context, cartID string, status domain.CartStatus) error
}

func New(repo cartRepo, products ProductSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		stock:    NewStockValidator(products),
		products: products,
		logger:   logger,
	}
}

// LineView is a cart line together with the product's current stock and image.
type LineView struct {
	domain.CartLine
	StockAvailable int
	ImageURL       string
	Available      bool
}

type View struct {
	Cart       *domain.Cart
	Lines      []LineView
	TotalCents int64
	TotalItems int
}

func (s *Service) GetOrCreateActive(ctx context.Context, buyerID string) (*domain.Cart, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, domain.Invalid("buyerId", "is required")
	}
	cart, err := s.repo.GetActiveByBuyer(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	cart, err = s.repo.CreateActive(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("cart: created", zap.String("cart_id", cart.ID), zap.String("buyer_id", buyerID))
	return cart, nil
}

// AddItem merges qty into the buyer's active cart. Stock is checked against the
// combined quantity so a line can never exceed what is available.
func (s *Service) AddItem(ctx context.Context, buyerID, productID string, qty int) (*domain.Cart, error) {
	if err := domain.ValidateQuantity(qty); err != nil {
		return nil, err
	}
	cart, err := s.GetOrCreateActive(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	existing := 0
	if line := cart.LineForProduct(productID); line != nil {
		existing = line.Quantity
	}
	product, err := s.stock.Validate(ctx, productID, existing+qty)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLineItem(ctx, cart.ID, domain.CartLine{
		ProductID:      product.ID,
		ProductName:    product.Name,
		UnitPriceCents: product.PriceCents,
		Quantity:       qty,
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) UpdateQuantity(ctx context.Context, buyerID, lineID string, qty int) (*domain.Cart, error) {
	if err := domain.ValidateQuantity(qty); err != nil {
		return nil, err
	}
	cart, err := s.active(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	line := cart.FindLine(lineID)
	if line == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := s.stock.Validate(ctx, line.ProductID, qty); err != nil {
		return nil, err
	}
	if err := s.repo.ChangeLineItemQuantity(ctx, cart.ID, lineID, qty); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) RemoveItem(ctx context.Context, buyerID, lineID string) (*domain.Cart, error) {
	cart, err := s.active(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLineItem(ctx, cart.ID, lineID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// ItemCount sums line quantities of the active cart; no cart counts as zero.
func (s *Service) ItemCount(ctx context.Context, buyerID string) (int, error) {
	cart, err := s.repo.GetActiveByBuyer(ctx, buyerID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cart.TotalItems(), nil
}

func (s *Service) View(ctx context.Context, buyerID string) (*View, error) {
	cart, err := s.GetOrCreateActive(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	view := &View{Cart: cart, TotalCents: cart.TotalCents(), TotalItems: cart.TotalItems()}
	for _, line := range cart.Lines {
		lv := LineView{CartLine: line}
		p, err := s.products.GetProduct(ctx, line.ProductID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			lv.StockAvailable = p.StockAvailable
			lv.ImageURL = p.ImageURL
			lv.Available = p.StockAvailable >= line.Quantity
		}
		view.Lines = append(view.Lines, lv)
	}
	return view, nil
}

func (s *Service) Abandon(ctx context.Context, buyerID string) error {
	cart, err := s.active(ctx, buyerID)
	if err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, cart.ID, domain.CartAbandoned)
}

func (s *Service) active(ctx context.Context, buyerID string) (*domain.Cart, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, domain.Invalid("buyerId", "is required")
	}
	return s.repo.GetActiveByBuyer(ctx, buyerID)
}
