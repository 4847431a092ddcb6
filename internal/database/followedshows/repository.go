// Package followedshows provides database operations for library membership.
package followedshows

import (
	"time"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// Repository handles followed-show database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new followed-shows repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Follow adds a show to the library, pending upload to the catalog. Following
// a show that is pending deletion cancels the deletion.
func (r *Repository) Follow(showID uint) error {
	var entry entities.FollowedShowEntry
	result := r.db.Where("show_id = ?", showID).First(&entry)

	if result.Error == gorm.ErrRecordNotFound {
		entry = entities.FollowedShowEntry{
			ShowID:        showID,
			FollowedAt:    time.Now(),
			PendingAction: entities.PendingActionUpload,
		}
		return r.db.Create(&entry).Error
	} else if result.Error != nil {
		return result.Error
	}

	if entry.PendingAction == entities.PendingActionDelete {
		entry.PendingAction = entities.PendingActionNothing
		return r.db.Save(&entry).Error
	}
	return nil
}

// Unfollow marks a show's library membership for deletion. The row survives
// until the deletion has been uploaded.
func (r *Repository) Unfollow(showID uint) error {
	var entry entities.FollowedShowEntry
	result := r.db.Where("show_id = ?", showID).First(&entry)
	if result.Error == gorm.ErrRecordNotFound {
		return nil
	} else if result.Error != nil {
		return result.Error
	}

	// Never uploaded: nothing to reconcile remotely, drop the row
	if entry.PendingAction == entities.PendingActionUpload {
		return r.db.Delete(&entry).Error
	}

	entry.PendingAction = entities.PendingActionDelete
	return r.db.Save(&entry).Error
}

// IsFollowed reports library membership, ignoring entries pending deletion.
func (r *Repository) IsFollowed(showID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.FollowedShowEntry{}).
		Where("show_id = ? AND pending_action <> ?", showID, entities.PendingActionDelete).
		Count(&count).Error
	return count > 0, err
}

// ListFollowed returns library entries, newest first, excluding pending
// deletions.
func (r *Repository) ListFollowed() ([]entities.FollowedShowEntry, error) {
	var entries []entities.FollowedShowEntry
	err := r.db.Preload("Show").
		Where("pending_action <> ?", entities.PendingActionDelete).
		Order("followed_at DESC").Find(&entries).Error
	return entries, err
}

// ListPending returns entries that need reconciling with the catalog.
func (r *Repository) ListPending() ([]entities.FollowedShowEntry, error) {
	var entries []entities.FollowedShowEntry
	err := r.db.Preload("Show").
		Where("pending_action <> ?", entities.PendingActionNothing).
		Find(&entries).Error
	return entries, err
}

// MarkSynced reconciles entries after a catalog upload: uploads lose their
// pending marker and deletions are removed.
func (r *Repository) MarkSynced(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ? AND pending_action = ?", ids, entities.PendingActionDelete).
			Delete(&entities.FollowedShowEntry{}).Error; err != nil {
			return err
		}
		return tx.Model(&entities.FollowedShowEntry{}).
			Where("id IN ?", ids).
			Update("pending_action", entities.PendingActionNothing).Error
	})
}
