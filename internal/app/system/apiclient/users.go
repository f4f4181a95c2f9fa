package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// ReadUsersParams pages through all users.
type ReadUsersParams struct {
	Skip  int
	Limit int
}

// ReadUsers lists users (GET /api/v1/users/).
func (c *Client) ReadUsers(ctx context.Context, p ReadUsersParams) (models.UsersPublic, error) {
	var out models.UsersPublic
	err := c.do(ctx, request{
		endpoint: "users.read_users",
		method:   http.MethodGet,
		path:     "/api/v1/users/",
		query:    pageQuery(p.Skip, p.Limit),
	}, &out)
	return out, err
}

// CreateUserParams is the admin "create user" call.
type CreateUserParams struct {
	Body models.UserCreate
}

// CreateUser creates a user (POST /api/v1/users/).
func (c *Client) CreateUser(ctx context.Context, p CreateUserParams) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.create_user",
		method:   http.MethodPost,
		path:     "/api/v1/users/",
		body:     p.Body,
	}, &out)
	return out, err
}

// ReadUserMe returns the signed-in user (GET /api/v1/users/me).
func (c *Client) ReadUserMe(ctx context.Context) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.read_user_me",
		method:   http.MethodGet,
		path:     "/api/v1/users/me",
	}, &out)
	return out, err
}

// DeleteUserMe deletes the signed-in user (DELETE /api/v1/users/me).
func (c *Client) DeleteUserMe(ctx context.Context) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "users.delete_user_me",
		method:   http.MethodDelete,
		path:     "/api/v1/users/me",
	}, &out)
	return out, err
}

// UpdateUserMeParams is the self-service profile update.
type UpdateUserMeParams struct {
	Body models.UserUpdateMe
}

// UpdateUserMe updates the signed-in user (PATCH /api/v1/users/me).
func (c *Client) UpdateUserMe(ctx context.Context, p UpdateUserMeParams) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.update_user_me",
		method:   http.MethodPatch,
		path:     "/api/v1/users/me",
		body:     p.Body,
	}, &out)
	return out, err
}

// UpdatePasswordMeParams changes the signed-in user's password.
type UpdatePasswordMeParams struct {
	Body models.UpdatePassword
}

// UpdatePasswordMe changes the signed-in user's password
// (PATCH /api/v1/users/me/password).
func (c *Client) UpdatePasswordMe(ctx context.Context, p UpdatePasswordMeParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "users.update_password_me",
		method:   http.MethodPatch,
		path:     "/api/v1/users/me/password",
		body:     p.Body,
	}, &out)
	return out, err
}

// RegisterUserParams is the public signup call.
type RegisterUserParams struct {
	Body models.UserRegister
}

// RegisterUser signs up a new account (POST /api/v1/users/signup).
func (c *Client) RegisterUser(ctx context.Context, p RegisterUserParams) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.register_user",
		method:   http.MethodPost,
		path:     "/api/v1/users/signup",
		body:     p.Body,
	}, &out)
	return out, err
}

// UserIDParams addresses one user.
type UserIDParams struct {
	UserID string
}

// ReadUserByID returns one user (GET /api/v1/users/{user_id}).
func (c *Client) ReadUserByID(ctx context.Context, p UserIDParams) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.read_user_by_id",
		method:   http.MethodGet,
		path:     "/api/v1/users/{user_id}",
		params:   map[string]string{"user_id": p.UserID},
	}, &out)
	return out, err
}

// UpdateUserParams is the admin PATCH of a user.
type UpdateUserParams struct {
	UserID string
	Body   models.UserUpdate
}

// UpdateUser updates a user (PATCH /api/v1/users/{user_id}).
func (c *Client) UpdateUser(ctx context.Context, p UpdateUserParams) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "users.update_user",
		method:   http.MethodPatch,
		path:     "/api/v1/users/{user_id}",
		params:   map[string]string{"user_id": p.UserID},
		body:     p.Body,
	}, &out)
	return out, err
}

// DeleteUser deletes a user (DELETE /api/v1/users/{user_id}).
func (c *Client) DeleteUser(ctx context.Context, p UserIDParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "users.delete_user",
		method:   http.MethodDelete,
		path:     "/api/v1/users/{user_id}",
		params:   map[string]string{"user_id": p.UserID},
	}, &out)
	return out, err
}
