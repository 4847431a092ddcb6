package watched

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_watched_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Show{},
		&entities.Season{},
		&entities.Episode{},
		&entities.WatchedShowEntry{},
		&entities.EpisodeWatchEntry{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_UpsertWatchedShow(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertWatchedShow(1, first, 3))

	entry, err := repo.GetWatchedShow(1)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.PlayCount)

	later := first.Add(48 * time.Hour)
	require.NoError(t, repo.UpsertWatchedShow(1, later, 5))

	entry, err = repo.GetWatchedShow(1)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.PlayCount)
	assert.True(t, entry.LastWatchedAt.Equal(later))

	entries, err := repo.ListWatched()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRepository_EpisodeWatchLifecycle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	watchedAt := time.Date(2024, 2, 10, 21, 30, 0, 0, time.UTC)
	entry, err := repo.AddEpisodeWatch(7, watchedAt)
	require.NoError(t, err)
	assert.Equal(t, entities.PendingActionUpload, entry.PendingAction)

	pending, err := repo.ListPendingEpisodeWatches()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.MarkEpisodeWatchesSynced([]uint{entry.ID}))

	pending, err = repo.ListPendingEpisodeWatches()
	require.NoError(t, err)
	assert.Empty(t, pending)

	watches, err := repo.ListEpisodeWatches(7)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	assert.Equal(t, entities.PendingActionNothing, watches[0].PendingAction)
}

func TestRepository_MarkEpisodeWatchesSynced_EmptyIsNoop(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, repo.MarkEpisodeWatchesSynced(nil))
}
