// Package client talks to the otpauth HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI: SignIn asks the
// server to email a one-time code, Confirm exchanges the code for a bearer
// token, Check verifies a token and Ping probes reachability. HTTPClient is
// the implementation over net/http and JSON.
//
// # Error Handling
//
// Server answers are mapped to sentinel errors that callers match with
// errors.Is: ErrInvalidEmail, ErrInvalidCode, ErrUnauthorized,
// ErrDeliveryFailed, ErrBadRequest and ErrUnavailable. Transport failures and
// 503 responses are both reported as ErrUnavailable.
package client
