package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/metrics"
	"github.com/dalemusser/labhub/internal/domain/models"
	"golang.org/x/oauth2"
)

const accessTokenPath = "/api/v1/login/access-token"

// LoginParams is the OAuth2 password-grant form.
type LoginParams struct {
	Username     string
	Password     string
	Scopes       []string
	ClientID     string
	ClientSecret string
}

// LoginAccessToken exchanges a username and password for a bearer token
// (POST /api/v1/login/access-token, form encoded).
func (c *Client) LoginAccessToken(ctx context.Context, p LoginParams) (models.Token, error) {
	const endpoint = "login.access_token"

	cfg := oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.base + accessTokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: c.transport,
		Timeout:   c.timeout,
	})

	start := time.Now()
	tok, err := cfg.PasswordCredentialsToken(ctx, p.Username, p.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			metrics.ObserveBackend(endpoint, http.MethodPost, re.Response.StatusCode, time.Since(start))
			return models.Token{}, newAPIError(endpoint, re.Response.StatusCode, re.Body)
		}
		metrics.ObserveBackend(endpoint, http.MethodPost, 0, time.Since(start))
		return models.Token{}, fmt.Errorf("%s: %w", endpoint, err)
	}
	metrics.ObserveBackend(endpoint, http.MethodPost, http.StatusOK, time.Since(start))

	return models.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// TestToken returns the user the current token belongs to
// (POST /api/v1/login/test-token).
func (c *Client) TestToken(ctx context.Context) (models.UserPublic, error) {
	var out models.UserPublic
	err := c.do(ctx, request{
		endpoint: "login.test_token",
		method:   http.MethodPost,
		path:     "/api/v1/login/test-token",
	}, &out)
	return out, err
}

// RecoverPasswordParams names the account to send a recovery email to.
type RecoverPasswordParams struct {
	Email string
}

// RecoverPassword triggers a recovery email
// (POST /api/v1/password-recovery/{email}).
func (c *Client) RecoverPassword(ctx context.Context, p RecoverPasswordParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "login.recover_password",
		method:   http.MethodPost,
		path:     "/api/v1/password-recovery/{email}",
		params:   map[string]string{"email": p.Email},
	}, &out)
	return out, err
}

// ResetPasswordParams carries the reset token and the new password.
type ResetPasswordParams struct {
	Body models.NewPassword
}

// ResetPassword applies a new password using a recovery token
// (POST /api/v1/reset-password/).
func (c *Client) ResetPassword(ctx context.Context, p ResetPasswordParams) (models.Message, error) {
	var out models.Message
	err := c.do(ctx, request{
		endpoint: "login.reset_password",
		method:   http.MethodPost,
		path:     "/api/v1/reset-password/",
		body:     p.Body,
	}, &out)
	return out, err
}

// HealthCheck pings the backend (GET /api/v1/utils/health-check/).
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, request{
		endpoint: "utils.health_check",
		method:   http.MethodGet,
		path:     "/api/v1/utils/health-check/",
	}, nil)
}
