package users

import (
	"context"

	"github.com/dmitrijs2005/otpauth/internal/server/models"
)

type Repository interface {
	// Create inserts the user unless the email is already taken, in which
	// case common.ErrorAlreadyExists is returned and nothing is written.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
