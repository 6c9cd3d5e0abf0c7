package api

import (
	"context"
	"fmt"

	"github.com/procurehq/console/internal/model"
)

// ListSuppliers retrieves all suppliers.
func (c *Client) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	if err := c.Get(ctx, "/suppliers", &suppliers); err != nil {
		return nil, fmt.Errorf("fetching suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplier retrieves a single supplier by id.
func (c *Client) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := c.Get(ctx, "/suppliers/"+id, &supplier); err != nil {
		return nil, fmt.Errorf("fetching supplier %s: %w", id, err)
	}
	return &supplier, nil
}

// CreateSupplier registers a new supplier. Requires an admin role.
func (c *Client) CreateSupplier(ctx context.Context, supplier model.Supplier) (*model.Supplier, error) {
	if err := checkPayload(supplier); err != nil {
		return nil, err
	}

	var created model.Supplier
	if err := c.Post(ctx, "/suppliers", supplier, &created); err != nil {
		return nil, fmt.Errorf("creating supplier: %w", err)
	}
	return &created, nil
}

// UpdateSupplier replaces a supplier's details.
func (c *Client) UpdateSupplier(ctx context.Context, id string, supplier model.Supplier) (*model.Supplier, error) {
	if err := checkPayload(supplier); err != nil {
		return nil, err
	}

	var updated model.Supplier
	if err := c.Put(ctx, "/suppliers/"+id, supplier, &updated); err != nil {
		return nil, fmt.Errorf("updating supplier %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteSupplier removes a supplier. Requires an admin role.
func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/suppliers/"+id); err != nil {
		return fmt.Errorf("deleting supplier %s: %w", id, err)
	}
	return nil
}
