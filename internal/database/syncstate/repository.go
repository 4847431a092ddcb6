// Package syncstate provides database operations for sync progress tracking.
//
// # Usage
//
//	repo := syncstate.NewRepository(db, entities.SyncTypeShows)
//	err := repo.StartSync(100)
package syncstate

import (
	"time"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// Repository handles sync progress database operations for one sync type.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
}

// NewRepository creates a sync progress repository for a specific sync type.
func NewRepository(db *gorm.DB, syncType entities.SyncType) *Repository {
	return &Repository{db: db, syncType: syncType}
}

// GetSyncProgress retrieves the progress row for the configured sync type.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress row and marks it running.
func (r *Repository) StartSync(totalItems int) error {
	var progress entities.SyncProgress
	result := r.db.Where("sync_type = ?", r.syncType).First(&progress)

	now := time.Now()
	if result.Error == gorm.ErrRecordNotFound {
		progress = entities.SyncProgress{
			SyncType:   r.syncType,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Skipped = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress updates the counters of an ongoing sync.
func (r *Repository) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteSync marks the sync as completed or failed.
func (r *Repository) CompleteSync(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(updates).Error
}

// PruneCompleted removes finished progress rows older than the cutoff,
// regardless of sync type. Running rows are never pruned.
func PruneCompleted(db *gorm.DB, olderThan time.Time) (int64, error) {
	result := db.Where("status <> ? AND completed_at IS NOT NULL AND completed_at < ?",
		entities.SyncStatusRunning, olderThan).
		Delete(&entities.SyncProgress{})
	return result.RowsAffected, result.Error
}

// Pruner binds PruneCompleted to a connection, for callers that hold no
// repository.
type Pruner struct {
	db *gorm.DB
}

func NewPruner(db *gorm.DB) *Pruner {
	return &Pruner{db: db}
}

func (p *Pruner) PruneCompleted(olderThan time.Time) (int64, error) {
	return PruneCompleted(p.db, olderThan)
}
