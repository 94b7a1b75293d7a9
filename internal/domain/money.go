package domain

import "math"

// CentsToAmount converts integer cents to a decimal amount for transfer payloads.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// AmountToCents rounds a decimal amount to the nearest cent.
func AmountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
