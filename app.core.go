package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	cleanups []func() error
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewTickClock(NewClock(config.IsProduction))
	logger, flusher := SetupLogging(config, NewRSyncWriter(config, clock), clock)
	cleanups := []func() error{flusher}

	exporters, closers, err := SetupExporters(logger, config, clock)
	if err != nil {
		_ = flusher()
		return nil, err
	}
	// close the storages before flushing the logs.
	cleanups = append(closers, cleanups...)

	idsHandler := NewIDsHandler()
	library := NewLibrary(logger, clock, config.Library.LoanPeriodDays)
	libraryService := NewLibraryService(logger, config, idsHandler, library, exporters)

	if config.Library.SeedFile != "" {
		if err = seedCatalog(libraryService, config.Library.SeedFile); err != nil {
			for _, f := range cleanups {
				_ = f()
			}
			return nil, err
		}
	}

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		idsHandler,
		libraryService,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	logger.Info("app initialized",
		zap.Strings("app.exporters", exporters.Names()),
		zap.Int("library.loan_period_days", library.LoanPeriod()),
	)

	return &App{
		logger:   logger,
		config:   config,
		server:   srv,
		cleanups: cleanups,
	}, nil
}

func seedCatalog(ls LibraryServiceProvider, path string) error {
	seed, err := LoadSeedFile(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %s", err)
	}
	if _, err = ls.Seed(context.Background(), seed); err != nil {
		return fmt.Errorf("failed to seed the catalog: %s", err)
	}
	return nil
}

// SetupExporters builds the statistics exporters. The file exporter is always
// available, the storage backed ones are added when enabled. It returns the
// functions closing the underlying clients.
func SetupExporters(logger *zap.Logger, config *Config, clock Clocker) (Exporters, []func() error, error) {
	exporters := Exporters{FileExporterName: NewFileExporter(logger, config.Export.Folder)}
	closers := []func() error{}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	if config.BoltDB.Enable {
		boltDBClient, err := GetBoltDBClient(config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		exporter := NewBoltExporter(logger, &config.BoltDB, boltDBClient)
		exporters[BoltExporterName] = exporter
		closers = append(closers, exporter.Close)
	}

	if config.Redis.Enable {
		redisClient, err := GetRedisClient(config)
		if err != nil {
			_ = redisClient.Close()
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		exporter := NewRedisExporter(logger, redisClient)
		exporters[RedisExporterName] = exporter
		closers = append(closers, exporter.Close)
	}

	if config.SQLite.Enable {
		sqliteClient, err := GetSQLiteClient(config)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open sqlite database: %s", err)
		}
		exporter := NewSQLiteExporter(logger, clock, sqliteClient)
		exporters[SQLiteExporterName] = exporter
		closers = append(closers, exporter.Close)
	}

	return exporters, closers, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		if err := f(); err != nil {
			fmt.Println("error during app cleanup: ", err)
		}
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}
