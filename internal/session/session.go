package session

import (
	"time"

	"quiztour/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Session is the persisted identity: token, role and username are stored
// together and cleared together on logout.
type Session struct {
	Username string      `yaml:"username"`
	Role     domain.Role `yaml:"role"`
	Token    string      `yaml:"token"`
}

// FromIdentity builds the persisted form of a login response.
func FromIdentity(id domain.Identity) Session {
	return Session{Username: id.Username, Role: id.Role, Token: id.Token}
}

// Expired reports whether the bearer token carries an exp claim in the
// past. The client holds no signing key, so the token is parsed without
// verification; opaque or claim-less tokens never expire client-side.
func (s Session) Expired(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(s.Token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
