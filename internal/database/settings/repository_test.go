package settings

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_settings_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting(entities.SettingKeyCatalogSyncSchedule, "0 */6 * * *")
	require.NoError(t, err)

	setting, err := repo.GetSetting(entities.SettingKeyCatalogSyncSchedule)
	require.NoError(t, err)
	assert.Equal(t, "0 */6 * * *", setting.Value)
}

func TestRepository_SetSetting_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting("key", "first")
	require.NoError(t, err)

	err = repo.SetSetting("key", "second")
	require.NoError(t, err)

	setting, err := repo.GetSetting("key")
	require.NoError(t, err)
	assert.Equal(t, "second", setting.Value)
}

func TestRepository_GetSetting_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetSetting("nonexistent")

	assert.Error(t, err)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting("to-delete", "value")
	require.NoError(t, err)

	err = repo.DeleteSetting("to-delete")
	require.NoError(t, err)

	_, err = repo.GetSetting("to-delete")
	assert.Error(t, err)
}

func TestRepository_BoolHelpers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Absent key: fallback wins
	assert.True(t, repo.GetBool(entities.SettingKeyLibraryFollowedActive, true))
	assert.False(t, repo.GetBool(entities.SettingKeyLibraryFollowedActive, false))

	require.NoError(t, repo.SetBool(entities.SettingKeyLibraryFollowedActive, false))
	assert.False(t, repo.GetBool(entities.SettingKeyLibraryFollowedActive, true))

	// Garbage value: fallback wins
	require.NoError(t, repo.SetSetting("flag", "not-a-bool"))
	assert.True(t, repo.GetBool("flag", true))
}
