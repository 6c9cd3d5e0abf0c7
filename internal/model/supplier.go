package model

import "time"

// Supplier is a vendor that purchase orders can be placed with.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Category  string    `json:"category"`
	Rating    float64   `json:"rating"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Contract is a supplier agreement with a validity window.
type Contract struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	SupplierID string    `json:"supplier_id"`
	Supplier   string    `json:"supplier"`
	Title      string    `json:"title"`
	Value      float64   `json:"value"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// ExpiresWithin reports whether the contract ends within d of now.
func (c Contract) ExpiresWithin(now time.Time, d time.Duration) bool {
	return c.EndsAt.After(now) && c.EndsAt.Sub(now) <= d
}
