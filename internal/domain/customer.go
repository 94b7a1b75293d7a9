package domain

import "strings"

// Customer is the buyer profile held in the table store. Its ID equals the buyer identifier.
type Customer struct {
	ID              string
	Name            string
	Surname         string
	Username        string
	Email           string
	ShippingAddress string
	ETag            string
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.Surname)
}
