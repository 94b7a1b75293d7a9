package customer

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"

	"github.com/google/uuid"
)

// Service manages customer profiles. A customer's ID doubles as the buyer identifier.
type Service struct {
	repo custrepo.Repository
}

func New(repo custrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	ID              string
	Name            string
	Surname         string
	Username        string
	Email           string
	ShippingAddress string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return domain.Invalid("username", "is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return domain.Invalid("email", "is not a valid address")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByBuyerID resolves the profile linked to a buyer, failing with
// domain.ErrCustomerNotFound when none exists.
func (s *Service) GetByBuyerID(ctx context.Context, buyerID string) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, buyerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return s.repo.Create(ctx, domain.Customer{
		ID:              id,
		Name:            strings.TrimSpace(in.Name),
		Surname:         strings.TrimSpace(in.Surname),
		Username:        strings.TrimSpace(in.Username),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(in.Name)
	existing.Surname = strings.TrimSpace(in.Surname)
	existing.Username = strings.TrimSpace(in.Username)
	existing.Email = strings.ToLower(strings.TrimSpace(in.Email))
	existing.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	return s.repo.Update(ctx, *existing)
}

// UpdateShippingAddress replaces only the shipping address of an existing profile.
func (s *Service) UpdateShippingAddress(ctx context.Context, id, address string) (*domain.Customer, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.Invalid("shippingAddress", "is required")
	}
	existing, err := s.GetByBuyerID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ShippingAddress == address {
		return existing, nil
	}
	existing.ShippingAddress = address
	return s.repo.Update(ctx, *existing)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
