package models

import "time"

// OtpState is the lifecycle state of a stored one-time code.
type OtpState int

const (
	// OtpPending means the code may still be exchanged for a token.
	OtpPending OtpState = iota
	// OtpExpired means the code is older than its validity window.
	OtpExpired
)

func (s OtpState) String() string {
	switch s {
	case OtpPending:
		return "pending"
	case OtpExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// OtpRecord is the single live code for an email.
type OtpRecord struct {
	Email     string
	Code      int
	CreatedAt time.Time
}

// State reports whether the record is still usable at now. A record is
// pending while now - CreatedAt <= ttl.
func (r *OtpRecord) State(now time.Time, ttl time.Duration) OtpState {
	if now.Sub(r.CreatedAt) <= ttl {
		return OtpPending
	}
	return OtpExpired
}
