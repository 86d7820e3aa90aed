package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token. There is no refresh
// mechanism; callers re-authenticate after expiry.
const DefaultSessionTTL = 24 * time.Hour

// Claims is the identity snapshot embedded in a session token. The fields
// reflect the user record at issuance time; later role changes do not affect
// tokens already in flight.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// NewSessionClaims builds claims for a session token. The subject is the
// user id.
func NewSessionClaims(userID, email, role, name, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
		Name:  name,
	}
}

// ValidateExpiry ensures the token has not expired (exp) and is not used
// before it becomes valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
