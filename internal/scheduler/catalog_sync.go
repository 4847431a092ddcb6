// Package scheduler runs the periodic catalog sync on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
)

// CatalogSyncScheduler manages periodic pulls from the catalog API.
type CatalogSyncScheduler struct {
	service       *syncsvc.Service
	settingsStore *settingsstore.SettingsStore

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

// NewCatalogSyncScheduler creates a new scheduler instance
func NewCatalogSyncScheduler(service *syncsvc.Service, settingsStore *settingsstore.SettingsStore) *CatalogSyncScheduler {
	return &CatalogSyncScheduler{
		service:       service,
		settingsStore: settingsStore,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if sync is enabled
func (s *CatalogSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settingsStore.GetCatalogSyncConfig()

	if !config.Enabled {
		log.Printf("Catalog sync scheduler: disabled")
		return nil
	}

	// Validate schedule
	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	// Add the sync job
	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	// Create cancellable context
	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	// Start cron scheduler
	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.Printf("Catalog sync scheduler: started with schedule '%s'. Next run: %v", config.Schedule, nextRun)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *CatalogSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Catalog sync scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *CatalogSyncScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	// Restart with new settings
	return s.Start(context.Background())
}

// TriggerSync runs an immediate sync
func (s *CatalogSyncScheduler) TriggerSync() error {
	go s.runSync()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *CatalogSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *CatalogSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// GetNextRunTime returns when the next sync will occur
func (s *CatalogSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs the actual sync operation
func (s *CatalogSyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Catalog sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	config := s.settingsStore.GetCatalogSyncConfig()
	if !config.Enabled {
		log.Printf("Catalog sync: skipped (disabled)")
		return
	}

	log.Printf("Catalog sync: starting library refresh")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.service.SyncLibrary(ctx); err != nil {
		errMsg := fmt.Sprintf("Failed to refresh library: %v", err)
		log.Printf("Catalog sync: %s", errMsg)
		_ = s.settingsStore.SetCatalogSyncStatus("failed", errMsg, 0)
		return
	}

	var showsSynced int
	if progress, err := s.service.ShowProgress(); err == nil {
		showsSynced = progress.TotalItems
	}

	if err := s.service.SyncWatched(ctx); err != nil && err != syncsvc.ErrNotAuthenticated {
		errMsg := fmt.Sprintf("Failed to refresh watch history: %v", err)
		log.Printf("Catalog sync: %s", errMsg)
		_ = s.settingsStore.SetCatalogSyncStatus("failed", errMsg, showsSynced)
		return
	}

	duration := time.Since(startTime)
	successMsg := fmt.Sprintf("Refreshed %d shows in %v", showsSynced, duration.Round(time.Millisecond))
	log.Printf("Catalog sync: %s", successMsg)
	_ = s.settingsStore.SetCatalogSyncStatus("success", successMsg, showsSynced)
}
