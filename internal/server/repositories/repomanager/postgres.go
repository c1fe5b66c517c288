// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/migrations"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook. One-time codes may be kept in Redis
// instead, see WithRedisOtps.
type PostgresRepositoryManager struct {
	redisOtps *otps.RedisRepository
}

// Option configures a PostgresRepositoryManager.
type Option func(*PostgresRepositoryManager)

// WithRedisOtps stores one-time codes in Redis. Keys expire after retention.
func WithRedisOtps(rdb redis.UniversalClient, retention time.Duration) Option {
	return func(m *PostgresRepositoryManager) {
		m.redisOtps = otps.NewRedisRepository(rdb, retention)
	}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Otps returns the OTP repository. With Redis configured db is ignored.
func (m *PostgresRepositoryManager) Otps(db dbx.DBTX) otps.Repository {
	if m.redisOtps != nil {
		return m.redisOtps
	}
	return otps.NewPostgresRepository(db)
}

// AuthTokens returns an authtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) AuthTokens(db dbx.DBTX) authtokens.Repository {
	return authtokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB, opts ...Option) (RepositoryManager, error) {
	m := &PostgresRepositoryManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}
