package common

// TokenHeaderName is the HTTP header that carries the bearer token on
// /check requests.
const TokenHeaderName = "token"

const (
	// CodeMin and CodeMax bound the six-digit one-time codes.
	CodeMin = 100000
	CodeMax = 999999

	// TokenBytes is the amount of random bytes behind a bearer token.
	TokenBytes = 32
)
