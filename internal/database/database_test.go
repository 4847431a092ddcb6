package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

func setupTestDatabase(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestMigrate_FreshDatabaseReachesCurrentVersion(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	var applied []entities.SchemaMigration
	err := db.DB.Order("version ASC").Find(&applied).Error
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	assert.Equal(t, SchemaVersion, applied[len(applied)-1].Version)

	// Steps were applied in strictly increasing order
	for i := 1; i < len(applied); i++ {
		assert.Greater(t, applied[i].Version, applied[i-1].Version)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	var before int64
	require.NoError(t, db.DB.Model(&entities.SchemaMigration{}).Count(&before).Error)

	require.NoError(t, Migrate(db.DB))

	var after int64
	require.NoError(t, db.DB.Model(&entities.SchemaMigration{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, db.DB.Create(&entities.SchemaMigration{Version: SchemaVersion + 1, Label: "future"}).Error)

	err := Migrate(db.DB)
	assert.Error(t, err)
}

func TestMigrate_DeclaredEntitiesAreAccessible(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	show := entities.Show{TraktID: 1390, Title: "The Expanse"}
	require.NoError(t, db.DB.Create(&show).Error)

	require.NoError(t, db.DB.Create(&entities.ShowImage{
		ShowID: show.ID, Kind: entities.ImageKindPoster, URL: "p.jpg", Rating: 8.0,
	}).Error)

	var got entities.Show
	require.NoError(t, db.DB.Preload("Images").First(&got, show.ID).Error)
	assert.Equal(t, "The Expanse", got.Title)
	assert.Len(t, got.Images, 1)
}
