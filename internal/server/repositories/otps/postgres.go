package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.OtpRecord) error {
	query := `
		INSERT INTO otps (email, otp, createdat)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET otp = EXCLUDED.otp, createdat = EXCLUDED.createdat
	`
	if _, err := r.db.ExecContext(ctx, query, rec.Email, rec.Code, rec.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, email string) (*models.OtpRecord, error) {
	query := `
		SELECT email, otp, createdat
		FROM otps
		WHERE email = $1
	`
	rec := &models.OtpRecord{}
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&rec.Email, &rec.Code, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, rec *models.OtpRecord) (bool, error) {
	query := `
		DELETE FROM otps
		WHERE email = $1 AND otp = $2 AND createdat = $3
	`
	res, err := r.db.ExecContext(ctx, query, rec.Email, rec.Code, rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
