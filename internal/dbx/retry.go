package dbx

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// RetryBaseDelay is the first backoff step between attempts.
var RetryBaseDelay = 50 * time.Millisecond

// Retry runs fn and re-runs it up to maxRetries more times while it fails
// with a transient error (see IsTransient). Non-transient errors are
// returned immediately and unchanged.
func Retry(ctx context.Context, maxRetries uint64, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(RetryBaseDelay))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether err is a store failure that is safe to retry:
// the request never reached the server, the pooled connection was bad, or the
// network timed out.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, 40001: serialization failure
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" || pgErr.Code == "40001"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
