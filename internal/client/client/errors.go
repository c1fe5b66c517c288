package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("login expired")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrInvalidCode    = errors.New("invalid code")
	ErrDeliveryFailed = errors.New("code delivery failed")
	ErrBadRequest     = errors.New("invalid request")
)
