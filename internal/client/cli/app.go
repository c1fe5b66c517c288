package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/otpauth/internal/client/client"
	"github.com/dmitrijs2005/otpauth/internal/client/config"
	"github.com/dmitrijs2005/otpauth/internal/client/services"
	"github.com/dmitrijs2005/otpauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	logger      logging.Logger
	email       string
	Mode        Mode
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, errors.New("server URL is empty")
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(apiClient, c.TokenFile)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

// track updates the connectivity mode from the outcome of a server call.
func (a *App) track(ctx context.Context, err error) {
	switch {
	case err == nil:
		a.setMode(ctx, ModeOnline)
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ctx, ModeOffline)
	case errors.Is(err, context.Canceled), errors.Is(err, services.ErrNoToken):
	default:
		// the server answered
		a.setMode(ctx, ModeOnline)
	}
}

func (a *App) hasToken() bool {
	return a.authService.HasToken()
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
