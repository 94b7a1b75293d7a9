package api

import (
	"storefront/internal/domain"
)

func FromCustomer(c domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:              c.ID,
		Name:            c.Name,
		Surname:         c.Surname,
		Username:        c.Username,
		Email:           c.Email,
		ShippingAddress: c.ShippingAddress,
	}
}

func (d CustomerDTO) ToDomain() domain.Customer {
	return domain.Customer{
		ID:              d.ID,
		Name:            d.Name,
		Surname:         d.Surname,
		Username:        d.Username,
		Email:           d.Email,
		ShippingAddress: d.ShippingAddress,
	}
}

func FromProduct(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		ProductName:    p.Name,
		Description:    p.Description,
		Price:          domain.CentsToAmount(p.PriceCents),
		StockAvailable: p.StockAvailable,
		ImageURL:       p.ImageURL,
	}
}

func (d ProductDTO) ToDomain() domain.Product {
	return domain.Product{
		ID:             d.ID,
		Name:           d.ProductName,
		Description:    d.Description,
		PriceCents:     domain.AmountToCents(d.Price),
		StockAvailable: d.StockAvailable,
		ImageURL:       d.ImageURL,
	}
}

func FromOrder(o domain.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Username:    o.Username,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		OrderDate:   o.OrderDate,
		Quantity:    o.Quantity,
		UnitPrice:   domain.CentsToAmount(o.UnitPriceCents),
		TotalPrice:  domain.CentsToAmount(o.TotalPriceCents),
		Status:      string(o.Status),
	}
}

func (d OrderDTO) ToDomain() domain.Order {
	return domain.Order{
		ID:              d.ID,
		CustomerID:      d.CustomerID,
		Username:        d.Username,
		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		OrderDate:       d.OrderDate,
		Quantity:        d.Quantity,
		UnitPriceCents:  domain.AmountToCents(d.UnitPrice),
		TotalPriceCents: domain.AmountToCents(d.TotalPrice),
		Status:          domain.OrderStatus(d.Status),
	}
}

func FromOrders(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

func FromCart(c domain.Cart) CartDTO {
	dto := CartDTO{
		ID:         c.ID,
		BuyerID:    c.BuyerID,
		Status:     string(c.Status),
		Lines:      make([]CartLineDTO, 0, len(c.Lines)),
		TotalItems: c.TotalItems(),
		Total:      domain.CentsToAmount(c.TotalCents()),
		UpdatedAt:  c.UpdatedAt,
	}
	for _, l := range c.Lines {
		dto.Lines = append(dto.Lines, fromLine(l))
	}
	return dto
}

func fromLine(l domain.CartLine) CartLineDTO {
	return CartLineDTO{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		UnitPrice:   domain.CentsToAmount(l.UnitPriceCents),
		Quantity:    l.Quantity,
		Subtotal:    domain.CentsToAmount(l.SubtotalCents()),
		AddedAt:     l.AddedAt,
	}
}

// ErrorFromStock describes an insufficient-stock failure.
func ErrorFromStock(e *domain.InsufficientStockError) ErrorResponse {
	requested, available := e.Requested, e.Available
	return ErrorResponse{
		Error:     e.Error(),
		Code:      CodeInsufficientStock,
		ProductID: e.ProductID,
		Requested: &requested,
		Available: &available,
	}
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation        = "validation"
	CodeNotFound          = "not_found"
	CodeCustomerNotFound  = "customer_not_found"
	CodeEmptyCart         = "empty_cart"
	CodeInsufficientStock = "insufficient_stock"
	CodeConflict          = "conflict"
	CodeAlreadyExists     = "already_exists"
	CodeUpstream          = "upstream_unavailable"
	CodeInternal          = "internal"
)
