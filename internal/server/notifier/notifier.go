// Package notifier delivers one-time sign-in codes to users.
package notifier

import (
	"context"
	"time"
)

// Message is a sign-in code addressed to a single recipient.
type Message struct {
	To       string
	Code     int
	ValidFor time.Duration
}

// Notifier sends a code to its recipient. Implementations honour ctx
// cancellation so the caller can bound delivery time.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
