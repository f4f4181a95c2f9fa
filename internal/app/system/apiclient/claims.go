package apiclient

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the parts of an access token the console relies on.
type TokenClaims struct {
	Subject   string    // backend user_id
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token is past its expiry at now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseTokenClaims reads sub and exp from an access token without verifying
// its signature. The backend verifies on every request; the console only
// needs the claims to know who is signed in and when to ask them to log in
// again.
func ParseTokenClaims(token string) (TokenClaims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return TokenClaims{}, fmt.Errorf("parse access token: %w", err)
	}
	out := TokenClaims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}
