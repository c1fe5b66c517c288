// Package authtokens declares the repository contract for bearer tokens
// handed out after a confirmed sign-in.
package authtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/server/models"
)

// Repository stores, looks up and revokes auth tokens.
type Repository interface {
	// Create stores a new token row. Tokens are never updated in place.
	Create(ctx context.Context, token *models.AuthToken) error

	// Find looks up a token by its opaque string. Implementations return
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.AuthToken, error)

	// DeleteExpired removes the token only if it was created before cutoff
	// and reports whether a row was deleted.
	DeleteExpired(ctx context.Context, token string, cutoff time.Time) (bool, error)
}
