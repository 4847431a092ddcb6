package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/scheduler"
	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
)

// SyncController triggers catalog syncs and reports their progress.
type SyncController struct {
	service   *syncsvc.Service
	scheduler *scheduler.CatalogSyncScheduler
	settings  *settingsstore.SettingsStore
}

func NewSyncController(
	service *syncsvc.Service,
	sched *scheduler.CatalogSyncScheduler,
	settings *settingsstore.SettingsStore,
) *SyncController {
	return &SyncController{
		service:   service,
		scheduler: sched,
		settings:  settings,
	}
}

// Trigger starts an immediate catalog sync in the background.
func (s *SyncController) Trigger(c *gin.Context) {
	if s.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync scheduler is not available"})
		return
	}
	if s.scheduler.IsSyncing() {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
		return
	}

	if err := s.scheduler.TriggerSync(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}

type syncStatusResponse struct {
	Syncing          bool                            `json:"syncing"`
	SchedulerRunning bool                            `json:"scheduler_running"`
	NextRunAt        *time.Time                      `json:"next_run_at,omitempty"`
	LastRun          settingsstore.CatalogSyncStatus `json:"last_run"`
	Shows            *entities.SyncProgress          `json:"shows,omitempty"`
	Watched          *entities.SyncProgress          `json:"watched,omitempty"`
}

// Status reports the scheduler state, the last run outcome and per-type
// progress rows.
func (s *SyncController) Status(c *gin.Context) {
	resp := syncStatusResponse{
		LastRun: s.settings.GetCatalogSyncStatus(),
	}

	if s.scheduler != nil {
		resp.Syncing = s.scheduler.IsSyncing()
		resp.SchedulerRunning = s.scheduler.IsRunning()
		resp.NextRunAt = s.scheduler.GetNextRunTime()
	}

	if progress, err := s.service.ShowProgress(); err == nil {
		resp.Shows = progress
	}
	if progress, err := s.service.WatchedProgress(); err == nil {
		resp.Watched = progress
	}

	c.JSON(http.StatusOK, resp)
}
