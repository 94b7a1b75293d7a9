package domain

import "time"

type CartStatus string

const (
	CartActive     CartStatus = "Active"
	CartCheckedOut CartStatus = "CheckedOut"
	CartAbandoned  CartStatus = "Abandoned"
)

// Cart is a buyer's in-progress selection. A buyer owns at most one Active cart.
type Cart struct {
	ID        string     `json:"id"`
	BuyerID   string     `json:"buyerId"`
	Status    CartStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Lines     []CartLine `json:"lines"`
}

// CartLine snapshots the product name and unit price at the time it was added.
type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
	AddedAt        time.Time `json:"addedAt"`
}

func (l CartLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.SubtotalCents()
	}
	return total
}

func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// FindLine returns the line with the given id, or nil.
func (c Cart) FindLine(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// LineForProduct returns the line holding productID, or nil.
func (c Cart) LineForProduct(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// ValidateQuantity rejects line quantities below one.
func ValidateQuantity(q int) error {
	if q < 1 {
		return Invalid("quantity", "must be at least 1")
	}
	return nil
}
