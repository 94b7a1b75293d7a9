package domain

type Product struct {
	ID             string
	Name           string
	Description    string
	PriceCents     int64
	StockAvailable int
	ImageURL       string
	ETag           string
}
