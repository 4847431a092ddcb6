package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
)

type stubShowSyncer struct {
	traktID int64
	err     error
}

func (s *stubShowSyncer) SyncShow(ctx context.Context, traktID int64) error {
	s.traktID = traktID
	return s.err
}

type stubWatchedSyncer struct {
	calls int
	err   error
}

func (s *stubWatchedSyncer) SyncWatched(ctx context.Context) error {
	s.calls++
	return s.err
}

type stubPruner struct {
	cutoff time.Time
	err    error
}

func (s *stubPruner) PruneCompleted(olderThan time.Time) (int64, error) {
	s.cutoff = olderThan
	return 3, s.err
}

func TestRefreshShowProcessor(t *testing.T) {
	syncer := &stubShowSyncer{}
	process := RefreshShowProcessor(syncer)

	require.NoError(t, process(context.Background(), RefreshShowTask{TraktID: 140911}))
	assert.Equal(t, int64(140911), syncer.traktID)

	assert.Error(t, process(context.Background(), RefreshShowTask{TraktID: 0}))

	syncer.err = errors.New("catalog unreachable")
	assert.Error(t, process(context.Background(), RefreshShowTask{TraktID: 1}))
}

func TestSyncWatchedProcessor_SkipsWhileLoggedOut(t *testing.T) {
	syncer := &stubWatchedSyncer{err: syncsvc.ErrNotAuthenticated}
	process := SyncWatchedProcessor(syncer)

	// Logged out is not a failure: the task must not be retried
	require.NoError(t, process(context.Background(), SyncWatchedTask{}))
	assert.Equal(t, 1, syncer.calls)

	syncer.err = errors.New("catalog unreachable")
	assert.Error(t, process(context.Background(), SyncWatchedTask{}))
}

func TestCleanupSyncRecordsProcessor_DefaultsRetention(t *testing.T) {
	pruner := &stubPruner{}
	process := CleanupSyncRecordsProcessor(pruner)

	require.NoError(t, process(context.Background(), CleanupSyncRecordsTask{}))

	// Default retention is 30 days
	expected := time.Now().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, pruner.cutoff, time.Minute)
}
