// Package server initializes and runs the authcore server: it wires the
// directory client, role resolver, local mirror, session issuer, and HTTP
// API together and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/campuskit/authcore/internal/auth"
	"github.com/campuskit/authcore/internal/avatars"
	"github.com/campuskit/authcore/internal/directory"
	"github.com/campuskit/authcore/internal/logging"
	"github.com/campuskit/authcore/internal/mirror"
	"github.com/campuskit/authcore/internal/roles"
	"github.com/campuskit/authcore/internal/server/config"
	"github.com/campuskit/authcore/internal/server/httpapi"
	"github.com/campuskit/authcore/internal/server/shared/db"
	"github.com/campuskit/authcore/internal/session"
)

type App struct {
	config *config.Config
	logger logging.Logger
	http   *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conn, err := db.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	mirrorSvc := mirror.NewService(conn)
	directoryClient := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryToken, cfg.DirectoryTimeout)
	resolver := roles.NewResolver(cfg.ManagerialDepartment, cfg.HeadOfficeBranch, cfg.AdminAllowList)
	issuer := session.NewIssuer([]byte(cfg.SecretKey), cfg.SessionTTL)
	gateway := auth.NewGateway(directoryClient, mirrorSvc, resolver, issuer, logger)
	avatarSvc := avatars.NewService(avatars.Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, gateway, issuer, avatarSvc, mirrorSvc)

	return &App{config: cfg, logger: logger, http: httpServer}, nil
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
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
