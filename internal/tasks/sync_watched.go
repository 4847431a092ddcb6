package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
)

// WatchedSyncer pulls the user's watch history from the catalog.
type WatchedSyncer interface {
	SyncWatched(ctx context.Context) error
}

// SyncWatchedTask refreshes the watch history in the background.
type SyncWatchedTask struct{}

// Config returns the queue configuration for watched sync tasks.
func (t SyncWatchedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_watched",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncWatchedProcessor creates a processor function for SyncWatchedTask.
func SyncWatchedProcessor(syncer WatchedSyncer) backlite.QueueProcessor[SyncWatchedTask] {
	return func(ctx context.Context, task SyncWatchedTask) error {
		if syncer == nil {
			return fmt.Errorf("watched syncer not configured")
		}

		err := syncer.SyncWatched(ctx)
		if errors.Is(err, syncsvc.ErrNotAuthenticated) {
			// Nothing to do until the user signs in; retrying won't help
			log.Printf("[TASK] Watched sync skipped: not signed in")
			return nil
		}
		if err != nil {
			return fmt.Errorf("sync watched: %w", err)
		}

		log.Printf("[TASK] Watch history refreshed from the catalog")
		return nil
	}
}

// NewSyncWatchedQueue creates a backlite queue for watched sync tasks.
func NewSyncWatchedQueue(syncer WatchedSyncer) backlite.Queue {
	return backlite.NewQueue(SyncWatchedProcessor(syncer))
}
