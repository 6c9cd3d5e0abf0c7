package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/procurehq/console/internal/model"
)

// ListOrders retrieves purchase orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, status string) ([]model.PurchaseOrder, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var orders []model.PurchaseOrder
	if err := c.Get(ctx, path, &orders); err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves a single purchase order by id.
func (c *Client) GetOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := c.Get(ctx, "/orders/"+id, &order); err != nil {
		return nil, fmt.Errorf("fetching order %s: %w", id, err)
	}
	return &order, nil
}

// UpdateOrderStatus advances an order's fulfilment state.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*model.PurchaseOrder, error) {
	body := map[string]string{"status": status}

	var order model.PurchaseOrder
	if err := c.Put(ctx, "/orders/"+id+"/status", body, &order); err != nil {
		return nil, fmt.Errorf("updating order %s status: %w", id, err)
	}
	return &order, nil
}
