package store

import (
	"context"

	"github.com/procurehq/console/internal/model"
)

// RequestFilter controls filtering, sorting, and pagination for cached
// purchase request queries.
type RequestFilter struct {
	Status     *string
	Department *string
	Query      *string
	SortBy     string // "updated_at", "created_at", "priority", "total", "title"
	SortDesc   bool
	Limit      int
	Offset     int
}

// Store is the local cache the client keeps so the inbox and resource
// lists are viewable between polls and offline. The server remains the
// source of truth; everything here is a mirror.
type Store interface {
	// === Notifications ===

	// ReplaceNotifications mirrors a full poll result, replacing the
	// cached list wholesale.
	ReplaceNotifications(ctx context.Context, notifications []model.Notification) error
	Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	UnreadNotificationCount(ctx context.Context) (int, error)

	// === Purchase requests ===

	UpsertRequests(ctx context.Context, requests []model.PurchaseRequest) error
	Requests(ctx context.Context, filter RequestFilter) ([]model.PurchaseRequest, error)
	RequestByID(ctx context.Context, id string) (*model.PurchaseRequest, error)

	// === Purchase orders ===

	UpsertOrders(ctx context.Context, orders []model.PurchaseOrder) error
	Orders(ctx context.Context, status string) ([]model.PurchaseOrder, error)
}
