package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/procurehq/console/internal/model"
)

// ListBudgets retrieves budgets, optionally filtered to one department.
func (c *Client) ListBudgets(ctx context.Context, department string) ([]model.Budget, error) {
	path := "/budgets"
	if department != "" {
		path += "?department=" + url.QueryEscape(department)
	}

	var budgets []model.Budget
	if err := c.Get(ctx, path, &budgets); err != nil {
		return nil, fmt.Errorf("fetching budgets: %w", err)
	}
	return budgets, nil
}

// GetBudget retrieves a single budget by id.
func (c *Client) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	var budget model.Budget
	if err := c.Get(ctx, "/budgets/"+id, &budget); err != nil {
		return nil, fmt.Errorf("fetching budget %s: %w", id, err)
	}
	return &budget, nil
}
