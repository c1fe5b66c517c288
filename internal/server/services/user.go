package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/repomanager"
)

// findOrCreateUser returns the user for email, creating it on first use.
// A concurrent creator winning the insert is resolved by reading its row.
func findOrCreateUser(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, email string) (*models.User, bool, error) {
	repo := m.Users(tx)

	user, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error searching user: %w", err)
	}

	user, err = repo.Create(ctx, &models.User{Email: email})
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return nil, false, fmt.Errorf("error creating user: %w", err)
	}

	user, err = repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("error re-reading user: %w", err)
	}
	return user, false, nil
}
