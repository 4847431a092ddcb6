package entities

import (
	"time"
)

// SchemaMigration records one applied migration step. The highest Version is
// the database's current schema version.
type SchemaMigration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Version   int       `gorm:"uniqueIndex" json:"version"`
	Label     string    `gorm:"size:256" json:"label"`
	AppliedAt time.Time `json:"applied_at"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
