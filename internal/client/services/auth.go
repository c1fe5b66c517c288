// Package services contains application services for the otpauth client.
// This file defines the authentication service: requesting a code,
// confirming it, checking the saved token and forgetting it.
package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/otpauth/internal/client/client"
	"github.com/dmitrijs2005/otpauth/internal/filex"
)

// ErrNoToken is returned by Check when nothing is saved locally.
var ErrNoToken = errors.New("not signed in")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - SignIn: ask the server to email a one-time code.
//   - Confirm: exchange the code for a token and save it locally.
//   - Check: verify the saved token; an expired token is forgotten.
//   - Forget: drop the saved token.
//   - Ping: check server liveness.
type AuthService interface {
	SignIn(ctx context.Context, email string) error
	Confirm(ctx context.Context, email string, code int) error
	Check(ctx context.Context) error
	Forget() error
	HasToken() bool
	Ping(ctx context.Context) error
}

type authService struct {
	client    client.Client
	tokenFile string
}

// NewAuthService constructs an AuthService bound to the API client and the
// file the token is persisted in.
func NewAuthService(c client.Client, tokenFile string) AuthService {
	return &authService{client: c, tokenFile: tokenFile}
}

func (a *authService) SignIn(ctx context.Context, email string) error {
	return a.client.SignIn(ctx, email)
}

func (a *authService) Confirm(ctx context.Context, email string, code int) error {
	token, err := a.client.Confirm(ctx, email, code)
	if err != nil {
		return err
	}
	if err := filex.WriteAtomic(a.tokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (a *authService) loadToken() (string, error) {
	token, err := filex.ReadTrimmed(a.tokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Check verifies the saved token. When the server reports it expired, the
// local copy is removed as well.
func (a *authService) Check(ctx context.Context) error {
	token, err := a.loadToken()
	if err != nil {
		return err
	}

	err = a.client.Check(ctx, token)
	if errors.Is(err, client.ErrUnauthorized) {
		if rmErr := a.Forget(); rmErr != nil {
			return errors.Join(err, rmErr)
		}
	}
	return err
}

func (a *authService) Forget() error {
	return filex.RemoveIfExists(a.tokenFile)
}

func (a *authService) HasToken() bool {
	_, err := a.loadToken()
	return err == nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
