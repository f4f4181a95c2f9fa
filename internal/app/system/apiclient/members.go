package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// AddUsersToLabParams adds an existing account to a lab by email.
type AddUsersToLabParams struct {
	LabID string
	Body  models.AddUsersToLab
}

// AddUsersToLab creates a membership (POST /api/v1/labs/{lab_id}/add-users).
func (c *Client) AddUsersToLab(ctx context.Context, p AddUsersToLabParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "labs.add_users_to_lab",
		method:   http.MethodPost,
		path:     "/api/v1/labs/{lab_id}/add-users",
		params:   map[string]string{"lab_id": p.LabID},
		body:     p.Body,
	}, &out)
	return out, err
}

// ViewLabUsersParams pages through a lab's members.
type ViewLabUsersParams struct {
	LabID string
	Skip  int
	Limit int
}

// ViewLabUsers lists a lab's members (GET /api/v1/labs/{lab_id}/users).
func (c *Client) ViewLabUsers(ctx context.Context, p ViewLabUsersParams) (models.UserLabsPublic, error) {
	var out models.UserLabsPublic
	err := c.do(ctx, request{
		endpoint: "labs.view_lab_users",
		method:   http.MethodGet,
		path:     "/api/v1/labs/{lab_id}/users",
		params:   map[string]string{"lab_id": p.LabID},
		query:    pageQuery(p.Skip, p.Limit),
	}, &out)
	return out, err
}

// MembershipParams addresses one (lab, user) membership.
type MembershipParams struct {
	LabID  string
	UserID string
}

// ViewUserInLab returns one membership
// (GET /api/v1/labs/{lab_id}/users/{user_id}).
func (c *Client) ViewUserInLab(ctx context.Context, p MembershipParams) (models.UserLabPublic, error) {
	var out models.UserLabPublic
	err := c.do(ctx, request{
		endpoint: "labs.view_user_in_lab",
		method:   http.MethodGet,
		path:     "/api/v1/labs/{lab_id}/users/{user_id}",
		params:   map[string]string{"lab_id": p.LabID, "user_id": p.UserID},
	}, &out)
	return out, err
}

// UpdateUserPermissionsParams replaces a member's capability flags.
type UpdateUserPermissionsParams struct {
	LabID  string
	UserID string
	Body   models.UpdateUserLab
}

// UpdateUserPermissions changes capability flags
// (PUT /api/v1/labs/{lab_id}/users/{user_id}/update-user-permissions).
func (c *Client) UpdateUserPermissions(ctx context.Context, p UpdateUserPermissionsParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "labs.update_user_permissions",
		method:   http.MethodPut,
		path:     "/api/v1/labs/{lab_id}/users/{user_id}/update-user-permissions",
		params:   map[string]string{"lab_id": p.LabID, "user_id": p.UserID},
		body:     p.Body,
	}, &out)
	return out, err
}
