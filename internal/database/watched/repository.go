// Package watched provides database operations for watch history.
package watched

import (
	"time"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// Repository handles watch history database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new watched repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertWatchedShow stores the catalog-reported last watch of a show.
func (r *Repository) UpsertWatchedShow(showID uint, lastWatchedAt time.Time, playCount int) error {
	var entry entities.WatchedShowEntry
	result := r.db.Where("show_id = ?", showID).First(&entry)

	if result.Error == gorm.ErrRecordNotFound {
		entry = entities.WatchedShowEntry{
			ShowID:        showID,
			LastWatchedAt: lastWatchedAt,
			PlayCount:     playCount,
		}
		return r.db.Create(&entry).Error
	} else if result.Error != nil {
		return result.Error
	}

	entry.LastWatchedAt = lastWatchedAt
	entry.PlayCount = playCount
	return r.db.Save(&entry).Error
}

// GetWatchedShow returns the watch entry for a show.
func (r *Repository) GetWatchedShow(showID uint) (*entities.WatchedShowEntry, error) {
	var entry entities.WatchedShowEntry
	err := r.db.Where("show_id = ?", showID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWatched returns all watched shows, most recently watched first.
func (r *Repository) ListWatched() ([]entities.WatchedShowEntry, error) {
	var entries []entities.WatchedShowEntry
	err := r.db.Preload("Show").Order("last_watched_at DESC").Find(&entries).Error
	return entries, err
}

// AddEpisodeWatch records a locally originated episode watch, pending upload
// to the catalog.
func (r *Repository) AddEpisodeWatch(episodeID uint, watchedAt time.Time) (*entities.EpisodeWatchEntry, error) {
	entry := &entities.EpisodeWatchEntry{
		EpisodeID:     episodeID,
		WatchedAt:     watchedAt,
		PendingAction: entities.PendingActionUpload,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEpisodeWatches returns all watches of an episode, newest first.
func (r *Repository) ListEpisodeWatches(episodeID uint) ([]entities.EpisodeWatchEntry, error) {
	var entries []entities.EpisodeWatchEntry
	err := r.db.Where("episode_id = ?", episodeID).Order("watched_at DESC").Find(&entries).Error
	return entries, err
}

// ListPendingEpisodeWatches returns entries waiting to be sent to the catalog.
func (r *Repository) ListPendingEpisodeWatches() ([]entities.EpisodeWatchEntry, error) {
	var entries []entities.EpisodeWatchEntry
	err := r.db.Where("pending_action = ?", entities.PendingActionUpload).
		Order("watched_at ASC").Find(&entries).Error
	return entries, err
}

// MarkEpisodeWatchesSynced clears the pending marker after a successful
// catalog upload.
func (r *Repository) MarkEpisodeWatchesSynced(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&entities.EpisodeWatchEntry{}).
		Where("id IN ?", ids).
		Update("pending_action", entities.PendingActionNothing).Error
}
