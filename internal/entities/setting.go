package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Library screen inclusion flags
	SettingKeyLibraryFollowedActive = "library_followed_active"
	SettingKeyLibraryWatchedActive  = "library_watched_active"

	// Catalog sync settings
	SettingKeyCatalogSyncEnabled     = "catalog_sync_enabled"
	SettingKeyCatalogSyncSchedule    = "catalog_sync_schedule"
	SettingKeyCatalogSyncLastAt      = "catalog_sync_last_at"
	SettingKeyCatalogSyncLastStatus  = "catalog_sync_last_status"
	SettingKeyCatalogSyncLastMessage = "catalog_sync_last_message"
	SettingKeyCatalogSyncShowsSynced = "catalog_sync_shows_synced"

	// Catalog account
	SettingKeyCatalogToken = "catalog_token"
)
