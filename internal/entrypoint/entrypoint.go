package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/backup"
	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/database"
	http_controllers "github.com/mrlokans/librium/internal/http"
	"github.com/mrlokans/librium/internal/query"
	"github.com/mrlokans/librium/internal/scheduler"
	"github.com/mrlokans/librium/internal/services"
	"github.com/mrlokans/librium/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the catalog database and every service built on it.
type App struct {
	DB         *database.Database
	Books      *services.BookService
	Reconciler *services.Reconciler
	Catalog    *services.CatalogService
	Facade     *query.Facade
	Backups    *backup.Service
}

// NewApp opens the database and wires the services.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &App{
		DB:         db,
		Books:      services.NewBookService(db),
		Reconciler: services.NewReconciler(db),
		Catalog:    services.NewCatalogService(db),
		Facade:     query.NewFacade(db, cfg.Pagination),
		Backups:    backup.NewService(db, cfg.Backup.Dir),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// kill -2 is SIGINT, plain kill is SIGTERM; SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener so no task outlives the pool.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}

	log.Info().Msg("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Info().Str("version", version).Msg("Starting Librium")

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	routerCfg := http_controllers.RouterConfig{
		Database:   app.DB,
		Books:      app.Books,
		Reconciler: app.Reconciler,
		Catalog:    app.Catalog,
		Browser:    app.Facade,
		Backups:    app.Backups,
		Version:    version,
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCreateBackupQueue(app.Backups))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskQueue = taskClient
	}

	backupScheduler := scheduler.NewBackupScheduler(app.Backups, cfg.Backup)
	if err := backupScheduler.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start backup scheduler")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		backupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
