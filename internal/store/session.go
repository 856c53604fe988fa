package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pbaille/journal/internal/domain"
)

// TokenExpiry reads the exp claim of a JWT access token without verifying
// its signature; the service does the verification. Non-JWT tokens and
// tokens without exp return nil.
func TokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}

// Expired reports whether the session's token is known to have expired at now
func Expired(session *domain.Session, now time.Time) bool {
	if session == nil || session.ExpiresAt == nil {
		return false
	}
	return !now.Before(*session.ExpiresAt)
}
