package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Otps(db dbx.DBTX) otps.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
}
