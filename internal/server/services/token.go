package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/repomanager"
)

// TokenManager issues opaque bearer tokens and validates them against
// their age, revoking the ones that outlived ttl.
type TokenManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	retries     uint64
	now         func() time.Time
}

func NewTokenManager(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration, retries int) *TokenManager {
	return &TokenManager{
		db:          db,
		repomanager: m,
		ttl:         ttl,
		retries:     uint64(max(retries, 0)),
		now:         time.Now,
	}
}

// Issue creates and stores a new token for userID.
func (m *TokenManager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := m.issue(ctx, m.db, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return token, nil
}

// issue stores the token through tx so callers can make it part of a
// larger transaction.
func (m *TokenManager) issue(ctx context.Context, tx dbx.DBTX, userID string) (string, error) {
	token, err := common.MakeRandHexString(common.TokenBytes)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	t := &models.AuthToken{UserID: userID, Token: token, CreatedAt: m.now()}
	if err := m.repomanager.AuthTokens(tx).Create(ctx, t); err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports the state of token. An expired token is deleted before
// TokenExpired is returned, so it reads as TokenUnknown afterwards.
func (m *TokenManager) Validate(ctx context.Context, token string) (models.TokenState, error) {
	if token == "" {
		return models.TokenUnknown, nil
	}

	repo := m.repomanager.AuthTokens(m.db)

	var t *models.AuthToken
	err := dbx.Retry(ctx, m.retries, func(ctx context.Context) error {
		var err error
		t, err = repo.Find(ctx, token)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.TokenUnknown, nil
		}
		return models.TokenUnknown, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	now := m.now()
	if t.State(now, m.ttl) == models.TokenValid {
		return models.TokenValid, nil
	}

	err = dbx.Retry(ctx, m.retries, func(ctx context.Context) error {
		_, err := repo.DeleteExpired(ctx, token, now.Add(-m.ttl))
		return err
	})
	if err != nil {
		return models.TokenUnknown, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return models.TokenExpired, nil
}
