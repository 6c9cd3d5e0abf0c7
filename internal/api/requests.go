package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/procurehq/console/internal/model"
)

// RequestListOptions controls filtering and pagination for request
// list queries.
type RequestListOptions struct {
	Status     string
	Department string
	Query      string
	Page       int
	PageSize   int
}

// RequestList is a page of purchase requests.
type RequestList struct {
	Items   []model.PurchaseRequest `json:"items"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	HasMore bool                    `json:"has_more"`
}

// ListRequests retrieves a page of purchase requests visible to the
// current user.
func (c *Client) ListRequests(ctx context.Context, opts RequestListOptions) (*RequestList, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Department != "" {
		q.Set("department", opts.Department)
	}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	path := "/requests"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list RequestList
	if err := c.Get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("fetching requests: %w", err)
	}
	return &list, nil
}

// GetRequest retrieves a single purchase request by id.
func (c *Client) GetRequest(ctx context.Context, id string) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := c.Get(ctx, "/requests/"+id, &req); err != nil {
		return nil, fmt.Errorf("fetching request %s: %w", id, err)
	}
	return &req, nil
}

// CreateRequest creates a new draft purchase request from a validated
// draft payload.
func (c *Client) CreateRequest(ctx context.Context, draft model.RequestDraft) (*model.PurchaseRequest, error) {
	if err := checkPayload(draft); err != nil {
		return nil, err
	}

	var created model.PurchaseRequest
	if err := c.Post(ctx, "/requests", draft, &created); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return &created, nil
}

// UpdateRequest replaces an editable request's draft fields.
func (c *Client) UpdateRequest(ctx context.Context, id string, draft model.RequestDraft) (*model.PurchaseRequest, error) {
	if err := checkPayload(draft); err != nil {
		return nil, err
	}

	var updated model.PurchaseRequest
	if err := c.Put(ctx, "/requests/"+id, draft, &updated); err != nil {
		return nil, fmt.Errorf("updating request %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteRequest removes a draft purchase request.
func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/requests/"+id); err != nil {
		return fmt.Errorf("deleting request %s: %w", id, err)
	}
	return nil
}

// SubmitRequest moves a draft into the approval workflow.
func (c *Client) SubmitRequest(ctx context.Context, id string) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := c.Post(ctx, "/requests/"+id+"/submit", nil, &req); err != nil {
		return nil, fmt.Errorf("submitting request %s: %w", id, err)
	}
	return &req, nil
}

// ApproveRequest approves a submitted request. Requires an approver or
// admin role.
func (c *Client) ApproveRequest(ctx context.Context, id, comment string) (*model.PurchaseRequest, error) {
	body := map[string]string{"comment": comment}

	var req model.PurchaseRequest
	if err := c.Post(ctx, "/requests/"+id+"/approve", body, &req); err != nil {
		return nil, fmt.Errorf("approving request %s: %w", id, err)
	}
	return &req, nil
}

// RejectRequest rejects a submitted request with a reason.
func (c *Client) RejectRequest(ctx context.Context, id, reason string) (*model.PurchaseRequest, error) {
	body := map[string]string{"reason": reason}

	var req model.PurchaseRequest
	if err := c.Post(ctx, "/requests/"+id+"/reject", body, &req); err != nil {
		return nil, fmt.Errorf("rejecting request %s: %w", id, err)
	}
	return &req, nil
}
