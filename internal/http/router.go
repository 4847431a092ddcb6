package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply session middleware if enabled
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Library screen endpoints
	if cfg.Presenter != nil {
		libraryController := NewLibraryController(cfg.Presenter)
		router.GET("/api/library", libraryController.GetState)
		router.POST("/api/library/events", libraryController.DispatchEvent)
		router.POST("/api/library/load-more", libraryController.LoadMore)
	}

	// Show endpoints
	var enqueuer TaskEnqueuer
	if cfg.TaskClient != nil {
		enqueuer = cfg.TaskClient
	}
	showsController := NewShowsController(cfg.ShowsRepo, cfg.EpisodesRepo, cfg.FollowedRepo, cfg.WatchedRepo, enqueuer)
	router.GET("/api/shows/search", showsController.Search)
	router.GET("/api/shows/:id", showsController.GetShow)
	router.POST("/api/shows/:id/follow", showsController.Follow)
	router.DELETE("/api/shows/:id/follow", showsController.Unfollow)
	router.POST("/api/shows/:id/refresh", showsController.Refresh)
	router.POST("/api/episodes/watch", showsController.WatchEpisode)

	// Account endpoints
	if cfg.Tokens != nil && cfg.Sessions != nil {
		accountController := NewAccountController(cfg.Catalog, cfg.Tokens, cfg.UsersRepo, cfg.Service, cfg.Sessions)
		router.POST("/api/account/login", accountController.Login)
		router.GET("/api/account", accountController.Profile)
		router.DELETE("/api/account", accountController.Logout)
	}

	// Settings endpoints
	var rescheduler Rescheduler
	if cfg.Scheduler != nil {
		rescheduler = cfg.Scheduler
	}
	settingsController := NewSettingsController(cfg.Settings, rescheduler)
	router.GET("/api/settings", settingsController.Get)
	router.PUT("/api/settings/library", settingsController.UpdateFlags)
	router.PUT("/api/settings/sync", settingsController.UpdateSyncConfig)

	// Sync endpoints
	syncController := NewSyncController(cfg.Service, cfg.Scheduler, cfg.Settings)
	router.POST("/api/sync/trigger", syncController.Trigger)
	router.GET("/api/sync/status", syncController.Status)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
