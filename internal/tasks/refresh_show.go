package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ShowSyncer pulls one show with its seasons and images from the catalog.
type ShowSyncer interface {
	SyncShow(ctx context.Context, traktID int64) error
}

// RefreshShowTask refreshes a single show from the catalog in the background.
type RefreshShowTask struct {
	TraktID int64 `json:"trakt_id"`
}

// Config returns the queue configuration for show refresh tasks.
func (t RefreshShowTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_show",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshShowProcessor creates a processor function for RefreshShowTask.
func RefreshShowProcessor(syncer ShowSyncer) backlite.QueueProcessor[RefreshShowTask] {
	return func(ctx context.Context, task RefreshShowTask) error {
		if syncer == nil {
			return fmt.Errorf("show syncer not configured")
		}
		if task.TraktID <= 0 {
			return fmt.Errorf("invalid trakt ID %d", task.TraktID)
		}

		if err := syncer.SyncShow(ctx, task.TraktID); err != nil {
			return fmt.Errorf("refresh show %d: %w", task.TraktID, err)
		}

		log.Printf("[TASK] Refreshed show %d from the catalog", task.TraktID)
		return nil
	}
}

// NewRefreshShowQueue creates a backlite queue for show refresh tasks.
func NewRefreshShowQueue(syncer ShowSyncer) backlite.Queue {
	return backlite.NewQueue(RefreshShowProcessor(syncer))
}
