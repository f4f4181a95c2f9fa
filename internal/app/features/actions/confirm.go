// internal/app/features/actions/confirm.go
package actions

import (
	"errors"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/gorilla/securecookie"
)

// DefaultConfirmTTL bounds how long a delete confirmation stays valid.
const DefaultConfirmTTL = 10 * time.Minute

const confirmName = "labhub-confirm-delete"

// ErrBadConfirmation is returned when a delete arrives without a valid
// token for the same record.
var ErrBadConfirmation = errors.New("delete confirmation missing or invalid")

// Confirmer signs and checks delete confirmation tokens. A token names the
// ref it was issued for, so it cannot be replayed against another record.
type Confirmer struct {
	sc *securecookie.SecureCookie
}

// NewConfirmer builds a Confirmer from a secret of at least 32 bytes.
func NewConfirmer(secret []byte, ttl time.Duration) *Confirmer {
	if ttl <= 0 {
		ttl = DefaultConfirmTTL
	}
	sc := securecookie.New(secret, nil)
	sc.MaxAge(int(ttl / time.Second))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Confirmer{sc: sc}
}

// Token issues a confirmation for ref.
func (c *Confirmer) Token(ref entityref.Ref) (string, error) {
	return c.sc.Encode(confirmName, ref.Key())
}

// Check verifies token was issued for ref and has not expired.
func (c *Confirmer) Check(ref entityref.Ref, token string) error {
	if token == "" {
		return ErrBadConfirmation
	}
	var key string
	if err := c.sc.Decode(confirmName, token, &key); err != nil {
		return errors.Join(ErrBadConfirmation, err)
	}
	if key != ref.Key() {
		return ErrBadConfirmation
	}
	return nil
}
