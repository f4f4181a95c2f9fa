package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// ReadLabsParams pages through the labs visible to the caller.
type ReadLabsParams struct {
	Skip  int
	Limit int
}

// ReadLabs lists labs (GET /api/v1/labs/).
func (c *Client) ReadLabs(ctx context.Context, p ReadLabsParams) (models.LabsPublic, error) {
	var out models.LabsPublic
	err := c.do(ctx, request{
		endpoint: "labs.read_labs",
		method:   http.MethodGet,
		path:     "/api/v1/labs/",
		query:    pageQuery(p.Skip, p.Limit),
	}, &out)
	return out, err
}

// CreateLabParams creates a lab owned by the caller.
type CreateLabParams struct {
	Body models.LabCreate
}

// CreateLab creates a lab (POST /api/v1/labs/).
func (c *Client) CreateLab(ctx context.Context, p CreateLabParams) (models.LabPublic, error) {
	var out models.LabPublic
	err := c.do(ctx, request{
		endpoint: "labs.create_lab",
		method:   http.MethodPost,
		path:     "/api/v1/labs/",
		body:     p.Body,
	}, &out)
	return out, err
}

// LabIDParams addresses one lab.
type LabIDParams struct {
	LabID string
}

// ReadLab returns one lab (GET /api/v1/labs/{lab_id}).
func (c *Client) ReadLab(ctx context.Context, p LabIDParams) (models.LabPublic, error) {
	var out models.LabPublic
	err := c.do(ctx, request{
		endpoint: "labs.read_lab",
		method:   http.MethodGet,
		path:     "/api/v1/labs/{lab_id}",
		params:   map[string]string{"lab_id": p.LabID},
	}, &out)
	return out, err
}

// UpdateLabParams replaces a lab's editable fields.
type UpdateLabParams struct {
	LabID string
	Body  models.LabUpdate
}

// UpdateLab updates a lab (PUT /api/v1/labs/{lab_id}).
func (c *Client) UpdateLab(ctx context.Context, p UpdateLabParams) (models.LabPublic, error) {
	var out models.LabPublic
	err := c.do(ctx, request{
		endpoint: "labs.update_lab",
		method:   http.MethodPut,
		path:     "/api/v1/labs/{lab_id}",
		params:   map[string]string{"lab_id": p.LabID},
		body:     p.Body,
	}, &out)
	return out, err
}

// DeleteLab deletes a lab (DELETE /api/v1/labs/{lab_id}).
func (c *Client) DeleteLab(ctx context.Context, p LabIDParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "labs.delete_lab",
		method:   http.MethodDelete,
		path:     "/api/v1/labs/{lab_id}",
		params:   map[string]string{"lab_id": p.LabID},
	}, &out)
	return out, err
}
