package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// ReadItemsParams pages through one lab's items.
type ReadItemsParams struct {
	LabID string
	Skip  int
	Limit int
}

// ReadItems lists a lab's items (GET /api/v1/labs/{lab_id}/items).
func (c *Client) ReadItems(ctx context.Context, p ReadItemsParams) (models.ItemsPublic, error) {
	var out models.ItemsPublic
	err := c.do(ctx, request{
		endpoint: "items.read_items",
		method:   http.MethodGet,
		path:     "/api/v1/labs/{lab_id}/items",
		params:   map[string]string{"lab_id": p.LabID},
		query:    pageQuery(p.Skip, p.Limit),
	}, &out)
	return out, err
}

// CreateItemParams creates an item in a lab.
type CreateItemParams struct {
	LabID string
	Body  models.ItemCreate
}

// CreateItem creates an item (POST /api/v1/labs/{lab_id}/items).
func (c *Client) CreateItem(ctx context.Context, p CreateItemParams) (models.ItemPublic, error) {
	var out models.ItemPublic
	err := c.do(ctx, request{
		endpoint: "items.create_item",
		method:   http.MethodPost,
		path:     "/api/v1/labs/{lab_id}/items",
		params:   map[string]string{"lab_id": p.LabID},
		body:     p.Body,
	}, &out)
	return out, err
}

// ItemIDParams addresses one item. Items are always scoped to their lab.
type ItemIDParams struct {
	LabID  string
	ItemID string
}

// ReadItem returns one item (GET /api/v1/labs/{lab_id}/items/{item_id}).
func (c *Client) ReadItem(ctx context.Context, p ItemIDParams) (models.ItemPublic, error) {
	var out models.ItemPublic
	err := c.do(ctx, request{
		endpoint: "items.read_item",
		method:   http.MethodGet,
		path:     "/api/v1/labs/{lab_id}/items/{item_id}",
		params:   map[string]string{"lab_id": p.LabID, "item_id": p.ItemID},
	}, &out)
	return out, err
}

// UpdateItemParams updates an item.
type UpdateItemParams struct {
	LabID  string
	ItemID string
	Body   models.ItemUpdate
}

// UpdateItem updates an item (PUT /api/v1/labs/{lab_id}/items/{item_id}).
func (c *Client) UpdateItem(ctx context.Context, p UpdateItemParams) (models.ItemPublic, error) {
	var out models.ItemPublic
	err := c.do(ctx, request{
		endpoint: "items.update_item",
		method:   http.MethodPut,
		path:     "/api/v1/labs/{lab_id}/items/{item_id}",
		params:   map[string]string{"lab_id": p.LabID, "item_id": p.ItemID},
		body:     p.Body,
	}, &out)
	return out, err
}

// DeleteItem deletes an item (DELETE /api/v1/labs/{lab_id}/items/{item_id}).
func (c *Client) DeleteItem(ctx context.Context, p ItemIDParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "items.delete_item",
		method:   http.MethodDelete,
		path:     "/api/v1/labs/{lab_id}/items/{item_id}",
		params:   map[string]string{"lab_id": p.LabID, "item_id": p.ItemID},
	}, &out)
	return out, err
}
