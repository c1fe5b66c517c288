package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otpauth/internal/client/client"
	"github.com/dmitrijs2005/otpauth/internal/client/services"
)

// getSimpleText and getCode are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getCode       = GetCode
)

// describe turns client errors into short messages for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidEmail):
		return "invalid email address"
	case errors.Is(err, client.ErrInvalidCode):
		return "invalid or expired code, request a new one with 'signin'"
	case errors.Is(err, client.ErrUnauthorized):
		return "login expired, sign in again"
	case errors.Is(err, client.ErrDeliveryFailed):
		return "the code could not be delivered, try again later"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, services.ErrNoToken):
		return "not signed in"
	default:
		return err.Error()
	}
}

// SignIn asks the server to email a code. The email comes from args or a prompt
// and is remembered for the following confirm.
func (a *App) SignIn(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	err := a.authService.SignIn(ctx, email)
	a.track(ctx, err)
	if err != nil {
		return err
	}

	a.email = email
	fmt.Fprintf(a.out, "Code sent to %s\n", email)
	return nil
}

// Confirm exchanges a code for a token. Without a prior signin it asks for the email.
func (a *App) Confirm(ctx context.Context, args []string) error {
	email := a.email
	if email == "" {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	var (
		code int
		err  error
	)
	if len(args) > 0 {
		code, err = ParseCode(args[0])
	} else {
		code, err = getCode(a.reader, a.out)
	}
	if err != nil {
		return err
	}

	err = a.authService.Confirm(ctx, email, code)
	a.track(ctx, err)
	if err != nil {
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Signed in")
	return nil
}

func (a *App) Check(ctx context.Context) error {
	err := a.authService.Check(ctx)
	a.track(ctx, err)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Forget(ctx context.Context) error {
	if err := a.authService.Forget(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Token removed")
	return nil
}
