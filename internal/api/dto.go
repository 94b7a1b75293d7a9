// Package api holds the JSON shapes exchanged over HTTP by both tiers.
package api

import "time"

type CustomerDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

type ProductDTO struct {
	ID             string  `json:"id"`
	ProductName    string  `json:"productName"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	StockAvailable int     `json:"stockAvailable"`
	ImageURL       string  `json:"imageUrl"`
}

type OrderDTO struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	Username    string    `json:"username"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	OrderDate   time.Time `json:"orderDate"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	Status      string    `json:"status"`
}

type OrderCreateDTO struct {
	ID         string     `json:"id,omitempty"`
	CustomerID string     `json:"customerId"`
	ProductID  string     `json:"productId"`
	Quantity   int        `json:"quantity"`
	OrderDate  *time.Time `json:"orderDate,omitempty"`
}

type StatusUpdateDTO struct {
	NewStatus string `json:"newStatus"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Requested *int   `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

type UploadResponse struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

type ImageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

type CartLineDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	UnitPrice      float64   `json:"unitPrice"`
	Quantity       int       `json:"quantity"`
	Subtotal       float64   `json:"subtotal"`
	AddedAt        time.Time `json:"addedAt"`
	StockAvailable *int      `json:"stockAvailable,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Available      *bool     `json:"available,omitempty"`
}

type CartDTO struct {
	ID         string        `json:"id"`
	BuyerID    string        `json:"buyerId"`
	Status     string        `json:"status"`
	Lines      []CartLineDTO `json:"lines"`
	TotalItems int           `json:"totalItems"`
	Total      float64       `json:"total"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

type CheckoutResponse struct {
	CartID        string     `json:"cartId"`
	Orders        []OrderDTO `json:"orders"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
	Message       string     `json:"message"`
}
