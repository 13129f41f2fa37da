// Package security reads what the bot needs from Copperx credentials without ever verifying or storing them raw.
package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is not a parseable JWT.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoExpiry is returned when a JWT carries no exp claim.
	ErrNoExpiry = errors.New("token has no exp claim")
)

// TokenExpiry returns the exp claim of a JWT access token. The signature is not checked:
// the bot is not the token's audience and only uses exp to shorten its own session.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// SessionExpiry returns min(now+ttl, exp claim). Tokens without a readable exp get now+ttl.
func SessionExpiry(token string, now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if tokExp, err := TokenExpiry(token); err == nil && tokExp.Before(exp) {
		return tokExp
	}
	return exp
}

// Fingerprint returns a short SHA-256 prefix of a credential, safe to put in logs and audit rows.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:8])
}
