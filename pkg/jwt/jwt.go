package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claims")
)

// SessionClaims are the claims the survey backend puts in its session token
type SessionClaims struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      string  `json:"picture"`
	HasSubmitted bool    `json:"hasSubmitted"`
	Profession   *string `json:"profession,omitempty"`
	jwt.RegisteredClaims
}

// Decode parses a session token without verifying its signature. The signing
// secret stays on the backend; the client only reads the claims it was issued.
// Expiry is not checked here, see ExpiredAt.
func Decode(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidClaim)
	}

	return claims, nil
}

// ExpiredAt reports whether the claims are expired at now
func (c *SessionClaims) ExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// ExpiresAtTime returns the expiry instant, zero when absent
func (c *SessionClaims) ExpiresAtTime() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Sign issues an HS256 token for claims. The client never signs real sessions;
// this exists for local stub backends and tests.
func Sign(claims SessionClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// NewSessionClaims builds claims expiring at expiresAt
func NewSessionClaims(email, name string, hasSubmitted bool, profession *string, expiresAt time.Time) SessionClaims {
	return SessionClaims{
		Email:        email,
		Name:         name,
		HasSubmitted: hasSubmitted,
		Profession:   profession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-24 * time.Hour)),
		},
	}
}
