// Package server initializes and runs the otpauth server: it opens the
// stores, runs migrations, builds the notifier and serves the HTTP API and
// the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/otpauth/internal/logging"
	"github.com/dmitrijs2005/otpauth/internal/server/config"
	"github.com/dmitrijs2005/otpauth/internal/server/notifier"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/otpauth/internal/server/rest"
	"github.com/dmitrijs2005/otpauth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/otpauth/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	rdb         *redis.Client
	authService *services.AuthService
}

// NewApp opens the database (and Redis when configured), applies
// migrations and wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.DatabaseMaxConns)
	db.SetMaxIdleConns(c.DatabaseMaxConns)

	app := &App{config: c, logger: logger, db: db}

	var opts []repomanager.Option
	if c.OtpStore == config.OtpStoreRedis {
		app.rdb = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		opts = append(opts, repomanager.WithRedisOtps(app.rdb, c.OtpTTL))
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db, opts...)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	n, err := newNotifier(c, logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	app.authService = services.NewAuthService(db, rm, n, c, logger)

	return app, nil
}

func newNotifier(c *config.Config, logger logging.Logger) (notifier.Notifier, error) {
	tpl, err := notifier.NewTemplates(c.SiteName, "", "")
	if err != nil {
		return nil, err
	}

	switch c.NotifierKind {
	case config.NotifierBrevo:
		if c.BrevoAPIKey == "" {
			return nil, fmt.Errorf("brevo notifier needs an API key")
		}
		return notifier.NewBrevo(notifier.BrevoConfig{
			APIKey:     c.BrevoAPIKey,
			TemplateID: c.BrevoTemplateID,
			FromEmail:  c.SenderEmail,
			FromName:   c.SenderName,
		}, tpl), nil
	case config.NotifierSMTP:
		if c.SMTPHost == "" {
			return nil, fmt.Errorf("smtp notifier needs a host")
		}
		return notifier.NewSMTP(notifier.SMTPConfig{
			Host:      c.SMTPHost,
			Port:      c.SMTPPort,
			Username:  c.SMTPUser,
			Password:  c.SMTPPassword,
			FromEmail: c.SenderEmail,
			FromName:  c.SenderName,
		}, tpl), nil
	case config.NotifierLog:
		return notifier.NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", c.NotifierKind)
	}
}

func (app *App) probes() []gs.Probe {
	probes := []gs.Probe{{Name: "postgres", Check: app.db.PingContext}}
	if app.rdb != nil {
		probes = append(probes, gs.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return app.rdb.Ping(ctx).Err()
		}})
	}
	return probes
}

func (app *App) close() {
	if app.rdb != nil {
		_ = app.rdb.Close()
	}
	_ = app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.authService, app.config.CORSAllowOrigins, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.probes()...)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then waits for both servers to stop and closes the stores.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
