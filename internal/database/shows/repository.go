// Package shows provides database operations for show metadata and the
// paged library query backing the library screen.
//
// # Usage
//
//	repo := shows.NewRepository(db)
//	page, err := repo.LibraryShows(shows.LibraryQuery{FollowedActive: true, Limit: 20})
package shows

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// SortOption orders the library listing.
type SortOption string

const (
	SortLastWatched  SortOption = "last_watched"
	SortAlphabetical SortOption = "alphabetical"
	SortDateAdded    SortOption = "date_added"
)

// LibraryQuery selects and orders the library page. At least one of the two
// inclusion flags must be set for the query to return anything.
type LibraryQuery struct {
	Filter         string
	Sort           SortOption
	FollowedActive bool
	WatchedActive  bool
	Limit          int
	Offset         int
}

// Repository handles all show metadata database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shows repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertShow creates or updates a show keyed by its trakt ID. Images are
// merged by kind and URL so re-syncing does not duplicate artwork.
func (r *Repository) UpsertShow(show *entities.Show) error {
	var existing entities.Show
	result := r.db.Preload("Images").Where("trakt_id = ?", show.TraktID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return r.db.Create(show).Error
	} else if result.Error != nil {
		return result.Error
	}

	show.ID = existing.ID
	show.CreatedAt = existing.CreatedAt

	merged := make([]entities.ShowImage, 0, len(show.Images))
	for _, img := range show.Images {
		img.ShowID = existing.ID
		for _, have := range existing.Images {
			if have.Kind == img.Kind && have.URL == img.URL {
				img.ID = have.ID
				img.CreatedAt = have.CreatedAt
				break
			}
		}
		merged = append(merged, img)
	}
	show.Images = merged

	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(show).Error
}

// GetShowByID loads a show without associations.
func (r *Repository) GetShowByID(id uint) (*entities.Show, error) {
	var show entities.Show
	err := r.db.First(&show, id).Error
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// GetShowByTraktID loads a show by its external identity.
func (r *Repository) GetShowByTraktID(traktID int) (*entities.Show, error) {
	var show entities.Show
	err := r.db.Where("trakt_id = ?", traktID).First(&show).Error
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// GetShowWithImages loads a show joined with its ordered image collection.
func (r *Repository) GetShowWithImages(id uint) (*entities.ShowWithImages, error) {
	var show entities.Show
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&show, id).Error
	if err != nil {
		return nil, err
	}
	detail := &entities.ShowWithImages{Show: show, Images: show.Images}
	detail.Show.Images = nil
	return detail, nil
}

// SearchShows finds shows whose title contains the query, case-insensitive.
func (r *Repository) SearchShows(query string) ([]entities.Show, error) {
	var results []entities.Show
	pattern := "%" + query + "%"
	err := r.db.Where("LOWER(title) LIKE LOWER(?)", pattern).Order("title ASC").Find(&results).Error
	return results, err
}

// DeleteShow soft-deletes a show.
func (r *Repository) DeleteShow(id uint) error {
	return r.db.Delete(&entities.Show{}, id).Error
}

// LibraryShows returns one page of the user's library: shows that are
// followed and/or watched per the inclusion flags, title-filtered, ordered
// by the sort option. With both flags off the library is empty.
func (r *Repository) LibraryShows(q LibraryQuery) ([]entities.LibraryShow, error) {
	if !q.FollowedActive && !q.WatchedActive {
		return []entities.LibraryShow{}, nil
	}

	byShow := make(map[uint]*entities.LibraryShow)
	ordered := make([]*entities.LibraryShow, 0)

	if q.FollowedActive {
		var followed []entities.FollowedShowEntry
		err := r.db.Preload("Show").
			Where("pending_action <> ?", entities.PendingActionDelete).
			Find(&followed).Error
		if err != nil {
			return nil, err
		}
		for _, entry := range followed {
			followedAt := entry.FollowedAt
			row := &entities.LibraryShow{Show: entry.Show, Followed: true, FollowedAt: &followedAt}
			byShow[entry.ShowID] = row
			ordered = append(ordered, row)
		}
	}

	if q.WatchedActive {
		var watched []entities.WatchedShowEntry
		err := r.db.Preload("Show").Find(&watched).Error
		if err != nil {
			return nil, err
		}
		for _, entry := range watched {
			lastWatched := entry.LastWatchedAt
			if row, ok := byShow[entry.ShowID]; ok {
				row.LastWatchedAt = &lastWatched
				continue
			}
			row := &entities.LibraryShow{Show: entry.Show, LastWatchedAt: &lastWatched}
			byShow[entry.ShowID] = row
			ordered = append(ordered, row)
		}
	}

	filtered := ordered[:0]
	if q.Filter != "" {
		needle := strings.ToLower(q.Filter)
		for _, row := range ordered {
			if strings.Contains(strings.ToLower(row.Show.Title), needle) {
				filtered = append(filtered, row)
			}
		}
	} else {
		filtered = ordered
	}

	sortLibrary(filtered, q.Sort)

	start := q.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := len(filtered)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	page := make([]entities.LibraryShow, 0, end-start)
	for _, row := range filtered[start:end] {
		page = append(page, *row)
	}
	return page, nil
}

func sortLibrary(rows []*entities.LibraryShow, option SortOption) {
	switch option {
	case SortAlphabetical:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Show.Title) < strings.ToLower(rows[j].Show.Title)
		})
	case SortDateAdded:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].FollowedAt, rows[j].FollowedAt
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.After(*b)
		})
	default: // SortLastWatched
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].LastWatchedAt, rows[j].LastWatchedAt
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.After(*b)
		})
	}
}
