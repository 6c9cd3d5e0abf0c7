package model

import "time"

// NotificationType identifies the business event that produced a
// notification. The set mirrors the events the backend emits.
type NotificationType string

const (
	NotificationRequestSubmitted NotificationType = "request_submitted"
	NotificationRequestApproved  NotificationType = "request_approved"
	NotificationRequestRejected  NotificationType = "request_rejected"
	NotificationOrderCreated     NotificationType = "order_created"
	NotificationOrderShipped     NotificationType = "order_shipped"
	NotificationOrderReceived    NotificationType = "order_received"
	NotificationBudgetWarning    NotificationType = "budget_warning"
	NotificationBudgetExceeded   NotificationType = "budget_exceeded"
	NotificationContractExpiring NotificationType = "contract_expiring"
	NotificationUserMention      NotificationType = "user_mention"
)

// Urgent reports whether the event type should be highlighted in the UI.
func (t NotificationType) Urgent() bool {
	switch t {
	case NotificationBudgetExceeded, NotificationRequestRejected,
		NotificationContractExpiring:
		return true
	}
	return false
}

// Notification is a server-emitted event record surfaced to the user.
// The client only mirrors these; the server is the source of truth.
type Notification struct {
	// ID is the server-assigned identifier used for mark-read and delete.
	ID string `json:"id"`

	// Type identifies the originating business event.
	Type NotificationType `json:"type"`

	// Title is the short headline shown in the inbox list.
	Title string `json:"title"`

	// Message is the full human-readable notification text.
	Message string `json:"message"`

	// Metadata holds free-form key/value context from the server
	// (e.g., request number, department, amount).
	Metadata map[string]string `json:"metadata,omitempty"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when the notification was generated server-side.
	CreatedAt time.Time `json:"created_at"`
}
