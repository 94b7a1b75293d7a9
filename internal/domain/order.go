package domain

import "time"

type OrderStatus string

const (
	OrderSubmitted  OrderStatus = "Submitted"
	OrderProcessing OrderStatus = "Processing"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

// Order is materialized from one cart line. Only Status changes after creation.
type Order struct {
	ID              string
	CustomerID      string
	Username        string
	ProductID       string
	ProductName     string
	OrderDate       time.Time
	Quantity        int
	UnitPriceCents  int64
	TotalPriceCents int64
	Status          OrderStatus
	ETag            string
}

// OrderRequest is what the storefront submits for each cart line at checkout.
type OrderRequest struct {
	// ID is optional. A caller that sets it can repeat the request without
	// creating a second order.
	ID         string
	CustomerID string
	ProductID  string
	Quantity   int
	OrderDate  time.Time
}
