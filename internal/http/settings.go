package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anselmoalexandre/tivi/internal/settingsstore"
)

// Rescheduler lets the settings endpoint apply schedule changes immediately.
type Rescheduler interface {
	Reschedule() error
}

// SettingsController exposes the library flags and the periodic sync
// configuration.
type SettingsController struct {
	settings  *settingsstore.SettingsStore
	scheduler Rescheduler
}

func NewSettingsController(settings *settingsstore.SettingsStore, scheduler Rescheduler) *SettingsController {
	return &SettingsController{
		settings:  settings,
		scheduler: scheduler,
	}
}

type settingsResponse struct {
	FollowedActive bool                            `json:"followed_active"`
	WatchedActive  bool                            `json:"watched_active"`
	CatalogSync    settingsstore.CatalogSyncConfig `json:"catalog_sync"`
}

// Get returns the effective settings.
func (s *SettingsController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, settingsResponse{
		FollowedActive: s.settings.GetFollowedActive(),
		WatchedActive:  s.settings.GetWatchedActive(),
		CatalogSync:    s.settings.GetCatalogSyncConfig(),
	})
}

type updateFlagsRequest struct {
	FollowedActive *bool `json:"followed_active"`
	WatchedActive  *bool `json:"watched_active"`
}

// UpdateFlags changes the library inclusion flags. Omitted fields keep their
// current value.
func (s *SettingsController) UpdateFlags(c *gin.Context) {
	var req updateFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	if req.FollowedActive != nil {
		if err := s.settings.SetFollowedActive(*req.FollowedActive); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.WatchedActive != nil {
		if err := s.settings.SetWatchedActive(*req.WatchedActive); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"followed_active": s.settings.GetFollowedActive(),
		"watched_active":  s.settings.GetWatchedActive(),
	})
}

type updateSyncConfigRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
}

// UpdateSyncConfig changes the periodic sync configuration and reschedules
// the running scheduler.
func (s *SettingsController) UpdateSyncConfig(c *gin.Context) {
	var req updateSyncConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	if req.Schedule != nil {
		if err := s.settings.SetCatalogSyncSchedule(*req.Schedule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule: " + err.Error()})
			return
		}
	}
	if req.Enabled != nil {
		if err := s.settings.SetCatalogSyncEnabled(*req.Enabled); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	if s.scheduler != nil {
		if err := s.scheduler.Reschedule(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply schedule: " + err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, s.settings.GetCatalogSyncConfig())
}
