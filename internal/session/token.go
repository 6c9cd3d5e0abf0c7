package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extracts the exp claim from a stored bearer token. The
// signature is not verified here; the backend is the verifier. The
// claim is only used to decide whether to forget a stale session on
// load. Returns false for opaque tokens or tokens without an expiry,
// which are then left for the backend to judge.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
