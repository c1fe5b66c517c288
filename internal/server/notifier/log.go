package notifier

import (
	"context"

	"github.com/dmitrijs2005/otpauth/internal/logging"
)

// Log writes codes to the logger instead of sending them. Development only.
type Log struct {
	logger logging.Logger
}

func NewLog(logger logging.Logger) *Log {
	return &Log{logger: logger.With("module", "notifier")}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	l.logger.Warn(ctx, "sign-in code (log notifier, not delivered)",
		"email", msg.To, "code", msg.Code, "valid_for", msg.ValidFor.String())
	return nil
}
