// Package otps stores the single pending one-time code per email address.
package otps

import (
	"context"

	"github.com/dmitrijs2005/otpauth/internal/server/models"
)

// Repository is the contract shared by the Postgres and Redis backends.
type Repository interface {
	// Upsert stores rec, replacing any previous code for the same email.
	Upsert(ctx context.Context, rec *models.OtpRecord) error

	// Find returns the record for email or common.ErrorNotFound.
	Find(ctx context.Context, email string) (*models.OtpRecord, error)

	// Consume deletes the record for rec.Email only if both the code and the
	// creation time still match rec. It reports whether a record was deleted,
	// so exactly one of several concurrent consumers wins.
	Consume(ctx context.Context, rec *models.OtpRecord) (bool, error)
}
