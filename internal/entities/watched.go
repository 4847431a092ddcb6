package entities

import (
	"time"
)

// PendingAction marks a local change that has not yet been uploaded to the
// catalog service.
type PendingAction string

const (
	PendingActionNothing PendingAction = "nothing"
	PendingActionUpload  PendingAction = "upload"
	PendingActionDelete  PendingAction = "delete"
)

// FollowedShowEntry records membership of a show in the user's library.
type FollowedShowEntry struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ShowID        uint          `gorm:"uniqueIndex" json:"show_id"`
	Show          Show          `gorm:"foreignKey:ShowID" json:"show,omitempty"`
	FollowedAt    time.Time     `json:"followed_at"`
	PendingAction PendingAction `gorm:"size:20;default:'nothing';index" json:"pending_action"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// WatchedShowEntry records the catalog-reported last watch of a show.
type WatchedShowEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ShowID        uint      `gorm:"uniqueIndex" json:"show_id"`
	Show          Show      `gorm:"foreignKey:ShowID" json:"show,omitempty"`
	LastWatchedAt time.Time `gorm:"index" json:"last_watched_at"`
	PlayCount     int       `json:"play_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EpisodeWatchEntry records a single watch of an episode.
type EpisodeWatchEntry struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	EpisodeID     uint          `gorm:"index" json:"episode_id"`
	Episode       Episode       `gorm:"foreignKey:EpisodeID" json:"episode,omitempty"`
	TraktID       int           `gorm:"index" json:"trakt_id,omitempty"`
	WatchedAt     time.Time     `gorm:"index" json:"watched_at"`
	PendingAction PendingAction `gorm:"size:20;default:'nothing';index" json:"pending_action"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (FollowedShowEntry) TableName() string { return "followed_shows" }
func (WatchedShowEntry) TableName() string  { return "watched_shows" }
func (EpisodeWatchEntry) TableName() string { return "episode_watch_entries" }

// LibraryShow is the row shape returned by the paged library query: a show
// with its library membership and last-watched timestamp, when present.
type LibraryShow struct {
	Show          Show       `json:"show"`
	Followed      bool       `json:"followed"`
	FollowedAt    *time.Time `json:"followed_at,omitempty"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
}
