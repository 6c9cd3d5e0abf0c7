package api

import (
	"context"
	"fmt"

	"github.com/procurehq/console/internal/model"
)

// ListNotifications retrieves the full notification list for the
// current user, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.Get(ctx, "/notifications", &notifications); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := fmt.Sprintf("/notifications/%s/read", id)
	if err := c.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.Put(ctx, "/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification by id.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/notifications/"+id); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}
