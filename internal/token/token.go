// Package token issues and verifies signed, time-limited session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/model"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 24 * time.Hour

// claims is the wire form of the token payload: {id, email, tenant_id, iat, exp}.
type claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Issue signs c with secret (HS256) and returns the token and its expiry.
func Issue(c model.Claims, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("token: empty signing key")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:       c.UserID.String(),
		Email:    c.Email,
		TenantID: c.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(secret)
	return signed, exp, err
}

// Verify checks signature and expiry and returns the embedded identity.
// Expired tokens fail with errs.ErrTokenExpired, everything else with errs.ErrTokenInvalid.
func Verify(tokenString string, secret []byte) (model.Claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Claims{}, errs.ErrTokenExpired
		}
		return model.Claims{}, fmt.Errorf("%w: %v", errs.ErrTokenInvalid, err)
	}

	id, err := uuid.FromString(c.ID)
	if err != nil {
		return model.Claims{}, fmt.Errorf("%w: bad id claim", errs.ErrTokenInvalid)
	}
	return model.Claims{UserID: id, Email: c.Email, TenantID: c.TenantID}, nil
}
