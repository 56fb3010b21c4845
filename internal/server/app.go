// Package server wires the timers server together: it selects the object
// store backend, builds the repository and service, initializes the timers
// document, and runs the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/config"
	"github.com/dmitrijs2005/countdown/internal/server/httpapi"
	"github.com/dmitrijs2005/countdown/internal/server/objectstore"
	"github.com/dmitrijs2005/countdown/internal/server/repositories/timers"
	"github.com/dmitrijs2005/countdown/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	logCloser    io.Closer
	store        objectstore.Store
	closer       io.Closer
	timerService *services.TimerService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	out, logCloser := logging.Output(os.Stdout, c.LogFile)

	app, err := newApp(ctx, c, logging.NewJSONLogger(out, c.LogLevel))
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	app.logCloser = logCloser
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	store, closer, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	policy := objectstore.RetryPolicy{MaxAttempts: c.ReadRetryAttempts, Backoff: c.ReadRetryBackoff}
	retrying := objectstore.NewRetryingStore(store, policy, logger)

	repo := timers.NewDocumentRepository(retrying, c.TimersKey, timers.Options{
		PublicRead:        c.PublicRead,
		ConditionalWrites: c.ConditionalWrites,
	}, logger)

	ts := services.NewTimerService(repo, logger)

	return &App{config: c, logger: logger, store: retrying, closer: closer, timerService: ts}, nil
}

// openStore builds the backend named by c.StorageBackend. The returned
// closer is nil when the backend holds no resources.
func openStore(ctx context.Context, c *config.Config) (objectstore.Store, io.Closer, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		s, err := objectstore.NewS3Store(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.StoragePostgres:
		s, err := objectstore.NewPostgresStore(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StorageMemory:
		return objectstore.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
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

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.timerService,
		app.config.SecretKey, app.config.RequestTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run initializes the timers document and serves until ctx is cancelled or
// a termination signal is received. A failed initialization is logged only.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "key", app.config.TimersKey)

	app.initSignalHandler(cancelFunc)

	if err := app.timerService.Initialize(ctx); err != nil {
		app.logger.Warn(ctx, "timers document initialization failed", "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.closer != nil {
		if err := app.closer.Close(); err != nil {
			app.logger.Error(ctx, "store close failed", "error", err)
		}
	}

	app.logger.Info(context.Background(), "App stopped")

	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}
