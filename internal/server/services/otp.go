package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/repomanager"
)

// OtpManager creates, stores and single-use validates one-time codes.
type OtpManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	retries     uint64
	now         func() time.Time
}

func NewOtpManager(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration, retries int) *OtpManager {
	return &OtpManager{
		db:          db,
		repomanager: m,
		ttl:         ttl,
		retries:     uint64(max(retries, 0)),
		now:         time.Now,
	}
}

// Request generates a fresh code for email and stores it, replacing any
// pending one. The code is returned, not sent.
func (m *OtpManager) Request(ctx context.Context, email string) (int, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}

	code, err := common.RandIntInRange(common.CodeMin, common.CodeMax)
	if err != nil {
		return 0, fmt.Errorf("error generating code: %w", err)
	}

	rec := &models.OtpRecord{Email: email, Code: code, CreatedAt: m.now()}
	repo := m.repomanager.Otps(m.db)

	err = dbx.Retry(ctx, m.retries, func(ctx context.Context) error {
		return repo.Upsert(ctx, rec)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return code, nil
}

// Validate succeeds only if email has a pending record whose code equals
// code. The record is then consumed. A wrong, expired, replaced or already
// used code yields common.ErrInvalidCode and leaves the store as it was.
func (m *OtpManager) Validate(ctx context.Context, email string, code int) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return common.ErrInvalidCode
	}

	repo := m.repomanager.Otps(m.db)

	var rec *models.OtpRecord
	err = dbx.Retry(ctx, m.retries, func(ctx context.Context) error {
		var err error
		rec, err = repo.Find(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCode
		}
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if !codesEqual(rec.Code, code) {
		return common.ErrInvalidCode
	}
	if rec.State(m.now(), m.ttl) != models.OtpPending {
		return common.ErrInvalidCode
	}

	// not retried: a lost reply may hide a delete that already happened
	consumed, err := repo.Consume(ctx, rec)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	if !consumed {
		return common.ErrInvalidCode
	}

	return nil
}

func codesEqual(a, b int) bool {
	if b < common.CodeMin || b > common.CodeMax {
		return false
	}
	return subtle.ConstantTimeEq(int32(a), int32(b)) == 1
}
