// Package episodes provides database operations for seasons and episodes.
package episodes

import (
	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// Repository handles season and episode database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new episodes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSeasons stores a show's season listing, keyed by trakt IDs, merging
// episodes into existing rows so watch entries keep their references.
func (r *Repository) UpsertSeasons(showID uint, seasons []entities.Season) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range seasons {
			season := &seasons[i]
			season.ShowID = showID

			var existing entities.Season
			result := tx.Where("trakt_id = ?", season.TraktID).First(&existing)
			if result.Error == nil {
				season.ID = existing.ID
				season.CreatedAt = existing.CreatedAt
			} else if result.Error != gorm.ErrRecordNotFound {
				return result.Error
			}

			episodes := season.Episodes
			season.Episodes = nil
			if err := tx.Save(season).Error; err != nil {
				return err
			}

			for j := range episodes {
				episode := &episodes[j]
				episode.SeasonID = season.ID

				var have entities.Episode
				result := tx.Where("trakt_id = ?", episode.TraktID).First(&have)
				if result.Error == nil {
					episode.ID = have.ID
					episode.CreatedAt = have.CreatedAt
				} else if result.Error != gorm.ErrRecordNotFound {
					return result.Error
				}
				if err := tx.Save(episode).Error; err != nil {
					return err
				}
			}
			season.Episodes = episodes
		}
		return nil
	})
}

// GetSeasons returns a show's seasons with episodes, both in airing order.
func (r *Repository) GetSeasons(showID uint) ([]entities.Season, error) {
	var seasons []entities.Season
	err := r.db.Preload("Episodes", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).Where("show_id = ?", showID).Order("number ASC").Find(&seasons).Error
	return seasons, err
}

// GetEpisodeByTraktID loads one episode by its external identity.
func (r *Repository) GetEpisodeByTraktID(traktID int) (*entities.Episode, error) {
	var episode entities.Episode
	err := r.db.Where("trakt_id = ?", traktID).First(&episode).Error
	if err != nil {
		return nil, err
	}
	return &episode, nil
}

// NextEpisode returns the first episode of a show strictly after the given
// season/episode position, or gorm.ErrRecordNotFound when the show has no
// later episode.
func (r *Repository) NextEpisode(showID uint, afterSeason, afterEpisode int) (*entities.Episode, error) {
	var episode entities.Episode
	err := r.db.
		Joins("JOIN seasons ON seasons.id = episodes.season_id").
		Where("seasons.show_id = ?", showID).
		Where("seasons.number > ? OR (seasons.number = ? AND episodes.number > ?)",
			afterSeason, afterSeason, afterEpisode).
		Order("seasons.number ASC, episodes.number ASC").
		First(&episode).Error
	if err != nil {
		return nil, err
	}
	return &episode, nil
}
