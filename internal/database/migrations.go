package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// SchemaVersion is the schema version this binary expects. Databases behind
// it are migrated forward step by step; databases ahead of it are rejected.
const SchemaVersion = 30

type migrationStep struct {
	Version int
	Label   string
	Migrate func(tx *gorm.DB) error
}

// migrations is the exhaustive, ordered list of schema steps. An entity that
// no step declares does not exist as far as the data layer is concerned.
// Versions below the baseline belonged to pre-release schemas and were
// collapsed into it.
var migrations = []migrationStep{
	{
		Version: 27,
		Label:   "baseline schema",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&entities.Show{},
				&entities.ShowImage{},
				&entities.Season{},
				&entities.Episode{},
				&entities.FollowedShowEntry{},
				&entities.WatchedShowEntry{},
				&entities.EpisodeWatchEntry{},
				&entities.TraktUser{},
				&entities.Setting{},
				&entities.SyncProgress{},
			)
		},
	},
	{
		Version: 28,
		Label:   "show certification and vote counts",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&entities.Show{})
		},
	},
	{
		Version: 29,
		Label:   "pending-action markers on watch entries",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&entities.FollowedShowEntry{}, &entities.EpisodeWatchEntry{})
		},
	},
	{
		Version: 30,
		Label:   "image kind index and ratings",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&entities.ShowImage{})
		},
	},
}

// Migrate brings db up to SchemaVersion, applying missing steps in order and
// recording each applied step. Running against an up-to-date database is a
// no-op.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare migration table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", current, SchemaVersion)
	}

	for _, step := range migrations {
		if step.Version <= current {
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Migrate(tx); err != nil {
				return err
			}
			return tx.Create(&entities.SchemaMigration{
				Version:   step.Version,
				Label:     step.Label,
				AppliedAt: time.Now(),
			}).Error
		}); err != nil {
			return fmt.Errorf("migration v%d (%s) failed: %w", step.Version, step.Label, err)
		}
	}

	return nil
}

func currentVersion(db *gorm.DB) (int, error) {
	var version *int
	err := db.Model(&entities.SchemaMigration{}).Select("MAX(version)").Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}
