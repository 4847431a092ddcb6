package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anselmoalexandre/tivi/internal/config"
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/episodes"
	"github.com/anselmoalexandre/tivi/internal/database/followedshows"
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/syncstate"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	"github.com/anselmoalexandre/tivi/internal/database/watched"
	http_controllers "github.com/anselmoalexandre/tivi/internal/http"
	"github.com/anselmoalexandre/tivi/internal/presenter"
	"github.com/anselmoalexandre/tivi/internal/scheduler"
	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tasks"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// logNavigator handles navigation intents from the presenter. The server has
// no screen stack, so intents are only logged; API clients navigate
// themselves.
type logNavigator struct{}

func (logNavigator) OpenAccount() {
	log.Printf("Navigation: account screen requested")
}

func (logNavigator) OpenShowDetails(showID uint) {
	log.Printf("Navigation: show %d details requested", showID)
}

// Serve starts the HTTP server and blocks until an interrupt or termination
// signal arrives, then shuts down within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Tivi v%s", version)

	if cfg.Catalog.ClientID == "" {
		log.Printf("WARNING: Catalog client ID is not set. Remote sync will fail. Set 'CATALOG_CLIENT_ID' environment variable to enable.")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	settingsRepo := settings.NewRepository(db.DB)
	settingsStore := settingsstore.New(settingsRepo)

	tokens, err := tokenstore.New(settingsRepo, tokenstore.Config{
		EncryptionKey: cfg.Auth.TokenEncryptionKey,
		KeyFilePath:   cfg.Auth.TokenKeyFilePath,
	})
	if err != nil {
		log.Fatalf("Failed to initialize token store: %v", err)
	}

	catalogClient := trakt.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.ClientID)
	syncService := syncsvc.NewService(db.DB, catalogClient, tokens)

	showsRepo := shows.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	// Library screen presenter
	libraryPresenter := presenter.NewLibraryPresenter(
		tokens,
		usersRepo,
		showsRepo,
		settingsStore,
		syncService,
		logNavigator{},
		20,
	)
	libraryPresenter.Start()
	defer libraryPresenter.Close()

	// Periodic catalog sync
	syncScheduler := scheduler.NewCatalogSyncScheduler(syncService, settingsStore)
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: Failed to start sync scheduler: %v", err)
	}
	defer syncScheduler.Stop()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewRefreshShowQueue(syncService),
			tasks.NewSyncWatchedQueue(syncService),
			tasks.NewCleanupSyncRecordsQueue(syncstate.NewPruner(db.DB)),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Session manager for device sessions
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := http_controllers.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Version:  version,

		ShowsRepo:    showsRepo,
		EpisodesRepo: episodes.NewRepository(db.DB),
		FollowedRepo: followedshows.NewRepository(db.DB),
		WatchedRepo:  watched.NewRepository(db.DB),
		UsersRepo:    usersRepo,

		Settings:  settingsStore,
		Tokens:    tokens,
		Catalog:   catalogClient,
		Service:   syncService,
		Presenter: libraryPresenter,
		Scheduler: syncScheduler,

		Sessions:   sessionManager,
		TaskClient: taskClient,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if taskClient != nil {
			taskClient.Stop(ctx)
			if taskCtxCancel != nil {
				taskCtxCancel()
			}
		}
	})
}
