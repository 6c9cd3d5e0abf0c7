package model

import "time"

// Purchase order lifecycle states.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

// PurchaseOrder is an order placed with a supplier for an approved
// purchase request.
type PurchaseOrder struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// Number is the human-readable order number (e.g., PO-2024-0108).
	Number string `json:"number"`

	// RequestID links back to the originating purchase request.
	RequestID string `json:"request_id"`

	// SupplierID identifies the supplier the order was placed with.
	SupplierID string `json:"supplier_id"`

	// SupplierName is the supplier display name, denormalized for lists.
	SupplierName string `json:"supplier_name"`

	// Status is the fulfilment state (use OrderStatus* constants).
	Status string `json:"status"`

	// Total is the order amount.
	Total float64 `json:"total"`

	// ExpectedAt is the expected delivery date, if known.
	ExpectedAt *time.Time `json:"expected_at,omitempty"`

	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the order was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}
