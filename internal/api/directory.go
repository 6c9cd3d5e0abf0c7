package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/procurehq/console/internal/model"
)

// ListDepartments retrieves all departments.
func (c *Client) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	if err := c.Get(ctx, "/departments", &departments); err != nil {
		return nil, fmt.Errorf("fetching departments: %w", err)
	}
	return departments, nil
}

// ListCategories retrieves all spending categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.Get(ctx, "/categories", &categories); err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return categories, nil
}

// ListContracts retrieves supplier contracts.
func (c *Client) ListContracts(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	if err := c.Get(ctx, "/contracts", &contracts); err != nil {
		return nil, fmt.Errorf("fetching contracts: %w", err)
	}
	return contracts, nil
}

// GetContract retrieves a single contract by id.
func (c *Client) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	if err := c.Get(ctx, "/contracts/"+id, &contract); err != nil {
		return nil, fmt.Errorf("fetching contract %s: %w", id, err)
	}
	return &contract, nil
}

// SpendingReport retrieves the aggregated spending summary for a
// period (e.g., "2026-Q2"). An empty period means the current one.
func (c *Client) SpendingReport(ctx context.Context, period string) (*model.SpendingReport, error) {
	path := "/reports/spending"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}

	var report model.SpendingReport
	if err := c.Get(ctx, path, &report); err != nil {
		return nil, fmt.Errorf("fetching spending report: %w", err)
	}
	return &report, nil
}
