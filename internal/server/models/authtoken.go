package models

import "time"

// TokenState is the outcome of looking up a bearer token.
type TokenState int

const (
	// TokenUnknown means no row exists for the token.
	TokenUnknown TokenState = iota
	// TokenValid means the token exists and is within its validity window.
	TokenValid
	// TokenExpired means the token existed but was too old and has been revoked.
	TokenExpired
)

func (s TokenState) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// AuthToken is an opaque bearer token issued to a user.
type AuthToken struct {
	UserID    string
	Token     string
	CreatedAt time.Time
}

// State reports TokenValid while now - CreatedAt <= ttl, TokenExpired otherwise.
func (t *AuthToken) State(now time.Time, ttl time.Duration) TokenState {
	if now.Sub(t.CreatedAt) <= ttl {
		return TokenValid
	}
	return TokenExpired
}
