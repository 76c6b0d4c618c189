// Package server assembles the Pitstop server: database and migrations,
// image storage and cleanup, the GraphQL/HTTP endpoint and the gRPC health
// endpoint, with graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/config"
	"github.com/dmitrijs2005/pitstop/internal/server/graphql"
	"github.com/dmitrijs2005/pitstop/internal/server/httpserver"
	"github.com/dmitrijs2005/pitstop/internal/server/images"
	"github.com/dmitrijs2005/pitstop/internal/server/metrics"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pitstop/internal/server/services"

	gs "github.com/dmitrijs2005/pitstop/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	closeLogger func()
}

func NewApp(c *config.Config, w io.Writer) (*App, error) {
	logger, closeLogger, err := logging.New(c.LogFormat, w)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	return &App{config: c, logger: logger.With("app", "pitstop"), closeLogger: closeLogger}, nil
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

// imageStore picks the configured backend. The returned root is non-empty
// only for the local backend, which the HTTP server serves statically.
func (app *App) imageStore(ctx context.Context) (images.Store, string, error) {
	switch app.config.ImageStorage {
	case config.ImageStorageS3:
		s, err := images.NewS3Store(ctx, app.config)
		return s, "", err
	case config.ImageStorageLocal, "":
		s, err := images.NewLocalStore(app.config.ImagesDir)
		if err != nil {
			return nil, "", err
		}
		return s, s.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown image storage %q", app.config.ImageStorage)
	}
}

// openDatabase connects and migrates the schema.
func (app *App) openDatabase(ctx context.Context) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := repomanager.OpenDB(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return db, rm, nil
}

// serveWithJanitor runs serve until it returns and keeps the janitor
// working until then, so cleanups scheduled by requests that finish during
// graceful shutdown are still carried out.
func serveWithJanitor(ctx context.Context, j *images.Janitor, serve func(context.Context) error) error {
	janitorCtx, stopJanitor := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(janitorCtx)
	}()

	err := serve(ctx)

	stopJanitor()
	<-done
	return err
}

func (app *App) Run(ctx context.Context) error {
	defer app.closeLogger()

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	defer func() {
		cancelFunc()
		wg.Wait()
	}()

	authenticator := auth.NewAuthenticator(app.config.SecretKey, app.logger)

	// health answers NOT_SERVING while the rest is coming up
	health := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := health.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server error", "error", err.Error())
			cancelFunc()
		}
	}()

	db, rm, err := app.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()

	store, imagesRoot, err := app.imageStore(ctx)
	if err != nil {
		return fmt.Errorf("image storage init error: %w", err)
	}

	janitor := images.NewJanitor(store, app.logger, images.WithMetrics(m))

	users := services.NewUserService(db, rm, app.config)
	posts := services.NewPostService(db, rm, janitor, app.config)

	schema, err := graphql.NewSchema(users, posts)
	if err != nil {
		return fmt.Errorf("schema error: %w", err)
	}

	httpSrv := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, httpserver.Options{
		Authenticator: authenticator,
		GraphQL:       graphql.NewHandler(schema, app.logger),
		Store:         store,
		Images:        posts,
		Metrics:       m,
		ImagesRoot:    imagesRoot,
	})

	health.SetServing(true)

	err = serveWithJanitor(ctx, janitor, httpSrv.Run)
	health.SetServing(false)
	cancelFunc()

	if err != nil {
		return fmt.Errorf("http server error: %w", err)
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
