package entities

import (
	"time"

	"gorm.io/gorm"
)

type ShowStatus string

const (
	ShowStatusReturning    ShowStatus = "returning"
	ShowStatusInProduction ShowStatus = "in_production"
	ShowStatusPlanned      ShowStatus = "planned"
	ShowStatusEnded        ShowStatus = "ended"
	ShowStatusCanceled     ShowStatus = "canceled"
)

type ImageKind string

const (
	ImageKindBackdrop ImageKind = "backdrop"
	ImageKindPoster   ImageKind = "poster"
)

// Show is the catalog-level description of a series. TraktID is the stable
// external identity used for upserts during sync.
type Show struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TraktID       int            `gorm:"uniqueIndex" json:"trakt_id"`
	TmdbID        int            `gorm:"index" json:"tmdb_id,omitempty"`
	Title         string         `gorm:"index;size:512" json:"title"`
	Overview      string         `gorm:"type:text" json:"overview,omitempty"`
	Network       string         `gorm:"size:100" json:"network,omitempty"`
	Country       string         `gorm:"size:10" json:"country,omitempty"`
	Status        ShowStatus     `gorm:"size:20" json:"status,omitempty"`
	Runtime       int            `json:"runtime,omitempty"` // minutes
	FirstAired    *time.Time     `json:"first_aired,omitempty"`
	Certification string         `gorm:"size:20" json:"certification,omitempty"`
	TraktRating   float32        `json:"trakt_rating,omitempty"`
	TraktVotes    int            `json:"trakt_votes,omitempty"`
	Images        []ShowImage    `gorm:"foreignKey:ShowID" json:"images,omitempty"`
	Seasons       []Season       `gorm:"foreignKey:ShowID" json:"seasons,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ShowImage is one artwork candidate for a show. Several images of the same
// kind may exist; the highest-rated one wins.
type ShowImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShowID    uint      `gorm:"index" json:"show_id"`
	Kind      ImageKind `gorm:"size:20;index" json:"kind"`
	URL       string    `gorm:"size:2048" json:"url"`
	Language  string    `gorm:"size:10" json:"language,omitempty"`
	Rating    float32   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type Season struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ShowID       uint      `gorm:"index" json:"show_id"`
	TraktID      int       `gorm:"uniqueIndex" json:"trakt_id"`
	Number       int       `gorm:"index" json:"number"`
	Title        string    `gorm:"size:512" json:"title,omitempty"`
	Overview     string    `gorm:"type:text" json:"overview,omitempty"`
	EpisodeCount int       `json:"episode_count,omitempty"`
	Episodes     []Episode `gorm:"foreignKey:SeasonID" json:"episodes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Episode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SeasonID    uint       `gorm:"index" json:"season_id"`
	TraktID     int        `gorm:"uniqueIndex" json:"trakt_id"`
	Number      int        `gorm:"index" json:"number"`
	Title       string     `gorm:"size:512" json:"title,omitempty"`
	Overview    string     `gorm:"type:text" json:"overview,omitempty"`
	FirstAired  *time.Time `json:"first_aired,omitempty"`
	TraktRating float32    `json:"trakt_rating,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Show) TableName() string      { return "shows" }
func (ShowImage) TableName() string { return "show_images" }
func (Season) TableName() string    { return "seasons" }
func (Episode) TableName() string   { return "episodes" }

// ShowWithImages joins a show with its image collection and derives the
// backdrop and poster as the highest-rated image of each kind. The derived
// pointers are computed on first access and cached per instance, so a
// ShowWithImages must be treated as immutable once built.
type ShowWithImages struct {
	Show   Show
	Images []ShowImage

	backdrop     *ShowImage
	backdropOnce bool
	poster       *ShowImage
	posterOnce   bool
}

// Backdrop returns the highest-rated backdrop image, or nil when the show has
// no backdrop.
func (s *ShowWithImages) Backdrop() *ShowImage {
	if !s.backdropOnce {
		s.backdrop = highestRated(s.Images, ImageKindBackdrop)
		s.backdropOnce = true
	}
	return s.backdrop
}

// Poster returns the highest-rated poster image, or nil when the show has no
// poster.
func (s *ShowWithImages) Poster() *ShowImage {
	if !s.posterOnce {
		s.poster = highestRated(s.Images, ImageKindPoster)
		s.posterOnce = true
	}
	return s.poster
}

// Equal reports whether two instances carry the same show and the same image
// collection in the same order. Derived caches do not participate.
func (s *ShowWithImages) Equal(other *ShowWithImages) bool {
	if other == nil {
		return false
	}
	if s.Show.ID != other.Show.ID || s.Show.TraktID != other.Show.TraktID ||
		s.Show.Title != other.Show.Title || s.Show.UpdatedAt != other.Show.UpdatedAt {
		return false
	}
	if len(s.Images) != len(other.Images) {
		return false
	}
	for i := range s.Images {
		a, b := s.Images[i], other.Images[i]
		if a.ID != b.ID || a.Kind != b.Kind || a.URL != b.URL || a.Rating != b.Rating {
			return false
		}
	}
	return true
}

func highestRated(images []ShowImage, kind ImageKind) *ShowImage {
	var best *ShowImage
	for i := range images {
		if images[i].Kind != kind {
			continue
		}
		if best == nil || images[i].Rating > best.Rating {
			best = &images[i]
		}
	}
	return best
}
