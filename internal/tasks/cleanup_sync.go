package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SyncRecordPruner deletes completed sync progress rows older than a cutoff.
type SyncRecordPruner interface {
	PruneCompleted(olderThan time.Time) (int64, error)
}

// CleanupSyncRecordsTask removes stale sync progress rows.
type CleanupSyncRecordsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for sync record cleanup tasks.
func (t CleanupSyncRecordsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_sync_records",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupSyncRecordsProcessor creates a processor function for CleanupSyncRecordsTask.
func CleanupSyncRecordsProcessor(pruner SyncRecordPruner) backlite.QueueProcessor[CleanupSyncRecordsTask] {
	return func(ctx context.Context, task CleanupSyncRecordsTask) error {
		if pruner == nil {
			return fmt.Errorf("sync record pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

		deleted, err := pruner.PruneCompleted(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup sync records: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d sync records older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupSyncRecordsQueue creates a backlite queue for sync record cleanup tasks.
func NewCleanupSyncRecordsQueue(pruner SyncRecordPruner) backlite.Queue {
	return backlite.NewQueue(CleanupSyncRecordsProcessor(pruner))
}
