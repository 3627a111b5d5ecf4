package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints short-lived HS256 bearer tokens for a fixed subject.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	subject  string
	roles    []string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenIssuer creates an issuer signing with key. A zero ttl defaults to
// five minutes.
func NewTokenIssuer(key []byte, issuer, audience, subject string, roles []string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenIssuer{
		key:      key,
		issuer:   issuer,
		audience: audience,
		subject:  subject,
		roles:    roles,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Token returns a freshly signed token.
func (ti *TokenIssuer) Token() (string, error) {
	if len(ti.key) == 0 {
		return "", fmt.Errorf("signing key is empty")
	}
	now := ti.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   ti.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
		Roles: ti.roles,
	}
	if ti.audience != "" {
		claims.Audience = jwt.ClaimStrings{ti.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.key)
}
