package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"

	"github.com/google/uuid"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Input carries the editable product fields.
type Input struct {
	ID             string
	Name           string
	Description    string
	PriceCents     int64
	StockAvailable int
	ImageURL       string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("productName", "is required")
	}
	if in.PriceCents < 0 {
		return domain.Invalid("price", "must not be negative")
	}
	if in.StockAvailable < 0 {
		return domain.Invalid("stockAvailable", "must not be negative")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return s.repo.Create(ctx, domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		PriceCents:     in.PriceCents,
		StockAvailable: in.StockAvailable,
		ImageURL:       in.ImageURL,
	})
}

// Update overwrites the product, guarded by the ETag of the version it reads first.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(in.Name)
	existing.Description = in.Description
	existing.PriceCents = in.PriceCents
	existing.StockAvailable = in.StockAvailable
	existing.ImageURL = in.ImageURL
	return s.repo.Update(ctx, *existing)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
