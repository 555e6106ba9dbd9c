// Package token issues and verifies the signed bearer tokens handed out on
// login. Tokens are HS256 JWTs carrying the user id and role.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid is returned by Verify for any token that must not be accepted:
// bad signature, malformed payload or expired.
var ErrInvalid = errors.New("invalid or expired token")

// Claims is the token payload.
type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a process-wide key.
type Codec struct {
	key []byte
	now func() time.Time
}

func NewCodec(key []byte) *Codec {
	return &Codec{key: key, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{key: c.key, now: now}
}

// Issue returns a token for the given principal that expires ttl from now,
// together with that expiry. Every token gets a random jti, so two tokens
// issued to the same user in the same second still differ.
func (c *Codec) Issue(userID int, role string, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tok and returns its claims. Any
// failure is reported as ErrInvalid (wrapping the parser error).
func (c *Codec) Verify(tok string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.UserID <= 0 || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing user_id or role claim", ErrInvalid)
	}
	return claims, nil
}
