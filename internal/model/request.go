package model

import "time"

// Purchase request lifecycle states.
const (
	RequestStatusDraft     = "draft"
	RequestStatusSubmitted = "submitted"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusOrdered   = "ordered"
)

// Request priority levels (lower number = higher priority).
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// RequestItem is a single line item on a purchase request.
type RequestItem struct {
	// Description identifies the goods or service being requested.
	Description string `json:"description" validate:"required"`

	// Quantity is the number of units requested.
	Quantity int `json:"quantity" validate:"required,gt=0"`

	// UnitPrice is the expected price per unit.
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// Subtotal returns the line total for this item.
func (i RequestItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// PurchaseRequest is a request for goods or services awaiting the
// approval workflow.
type PurchaseRequest struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// Number is the human-readable request number (e.g., PR-2024-0042).
	Number string `json:"number"`

	// Title is the request summary shown in lists.
	Title string `json:"title"`

	// Description is the free-form justification text.
	Description string `json:"description"`

	// Status is the lifecycle state (use RequestStatus* constants).
	Status string `json:"status"`

	// Priority is the urgency level (use Priority* constants).
	Priority int `json:"priority"`

	// Department is the requesting department.
	Department string `json:"department"`

	// Category is the spending category name.
	Category string `json:"category"`

	// Items are the line items on this request.
	Items []RequestItem `json:"items"`

	// Total is the server-computed sum of all line items.
	Total float64 `json:"total"`

	// Requester is the display name of the user who created the request.
	Requester string `json:"requester"`

	// CreatedAt is when the request was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the request was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Editable reports whether the request can still be modified by its
// requester. Only drafts and rejected requests may be edited.
func (r PurchaseRequest) Editable() bool {
	return r.Status == RequestStatusDraft || r.Status == RequestStatusRejected
}

// RequestDraft is the client-side payload for creating or updating a
// purchase request. Validated before it is sent to the backend.
type RequestDraft struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description"`
	Priority    int           `json:"priority" validate:"min=1,max=4"`
	Department  string        `json:"department" validate:"required"`
	Category    string        `json:"category" validate:"required"`
	Items       []RequestItem `json:"items" validate:"required,min=1,dive"`
}
