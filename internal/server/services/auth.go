// Package services contains the server-side business logic: one-time code
// management, bearer token management and the AuthService that ties them
// to the notifier.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/logging"
	"github.com/dmitrijs2005/otpauth/internal/server/config"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/dmitrijs2005/otpauth/internal/server/notifier"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/repomanager"
)

// LoginStatus is the externally visible result of a token check.
type LoginStatus int

const (
	LoginExpired LoginStatus = iota
	LoginSuccessful
)

func (s LoginStatus) String() string {
	if s == LoginSuccessful {
		return "Login successful"
	}
	return "Login expired"
}

// AuthService implements the sign-in flow:
// - RequestCode: create a code for an email and deliver it
// - ConfirmCode: exchange a valid code for a bearer token
// - CheckToken: verify a bearer token
type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	otps          *OtpManager
	tokens        *TokenManager
	notifier      notifier.Notifier
	otpTTL        time.Duration
	notifyTimeout time.Duration
	retries       uint64
	logger        logging.Logger
}

// NewAuthService wires the code and token managers from cfg.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, n notifier.Notifier, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		otps:          NewOtpManager(db, m, cfg.OtpTTL, cfg.StoreRetries),
		tokens:        NewTokenManager(db, m, cfg.TokenTTL, cfg.StoreRetries),
		notifier:      n,
		otpTTL:        cfg.OtpTTL,
		notifyTimeout: cfg.NotifyTimeout,
		retries:       uint64(max(cfg.StoreRetries, 0)),
		logger:        logger.With("module", "auth"),
	}
}

// RequestCode validates email, stores a fresh code and sends it. The
// stored code stays valid even if delivery fails.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := s.otps.Request(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "error storing code", "email", email, "error", err)
		return err
	}

	sendCtx := ctx
	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
	}

	msg := notifier.Message{To: email, Code: code, ValidFor: s.otpTTL}
	if err := s.notifier.Send(sendCtx, msg); err != nil {
		s.logger.Error(ctx, "error sending code", "email", email, "error", err)
		return fmt.Errorf("%w: %w", common.ErrDeliveryFailed, err)
	}

	s.logger.Info(ctx, "code sent", "email", email)
	return nil
}

// ConfirmCode consumes a valid code and returns a new bearer token. The
// user lookup/creation and the token insert share one transaction.
func (s *AuthService) ConfirmCode(ctx context.Context, email string, code int) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", common.ErrInvalidCode
	}

	if err := s.otps.Validate(ctx, email, code); err != nil {
		if !errors.Is(err, common.ErrInvalidCode) {
			s.logger.Error(ctx, "error validating code", "email", email, "error", err)
		}
		return "", err
	}

	var token string
	var created bool
	err = dbx.Retry(ctx, s.retries, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			user, isNew, err := findOrCreateUser(ctx, s.repomanager, tx, email)
			if err != nil {
				return err
			}
			created = isNew

			token, err = s.tokens.issue(ctx, tx, user.ID)
			if err != nil {
				return fmt.Errorf("error issuing token: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Error(ctx, "error confirming code", "email", email, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.logger.Info(ctx, "code confirmed", "email", email, "new_user", created)
	return token, nil
}

// CheckToken maps the token state to a LoginStatus. Unknown and expired
// tokens are told apart only in the logs.
func (s *AuthService) CheckToken(ctx context.Context, token string) (LoginStatus, error) {
	state, err := s.tokens.Validate(ctx, token)
	if err != nil {
		s.logger.Error(ctx, "error checking token", "error", err)
		return LoginExpired, err
	}

	switch state {
	case models.TokenValid:
		return LoginSuccessful, nil
	case models.TokenExpired:
		s.logger.Info(ctx, "expired token revoked")
	default:
		s.logger.Debug(ctx, "unknown token")
	}
	return LoginExpired, nil
}
