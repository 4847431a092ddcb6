package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/database/episodes"
	"github.com/anselmoalexandre/tivi/internal/database/followedshows"
	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/watched"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/tasks"
)

// TaskEnqueuer enqueues background catalog refresh work. Satisfied by
// tasks.Client.
type TaskEnqueuer interface {
	Add(jobs ...backlite.Task) *backlite.TaskAddOp
}

// ShowsController serves show detail pages and the follow/watch actions on
// individual shows.
type ShowsController struct {
	showsRepo    *shows.Repository
	episodesRepo *episodes.Repository
	followedRepo *followedshows.Repository
	watchedRepo  *watched.Repository
	enqueuer     TaskEnqueuer
}

func NewShowsController(
	showsRepo *shows.Repository,
	episodesRepo *episodes.Repository,
	followedRepo *followedshows.Repository,
	watchedRepo *watched.Repository,
	enqueuer TaskEnqueuer,
) *ShowsController {
	return &ShowsController{
		showsRepo:    showsRepo,
		episodesRepo: episodesRepo,
		followedRepo: followedRepo,
		watchedRepo:  watchedRepo,
		enqueuer:     enqueuer,
	}
}

type showDetailResponse struct {
	Show     entities.Show              `json:"show"`
	Images   []entities.ShowImage       `json:"images"`
	Seasons  []entities.Season          `json:"seasons"`
	Followed bool                       `json:"followed"`
	Watched  *entities.WatchedShowEntry `json:"watched,omitempty"`
}

// GetShow returns a show with its images, seasons and library status.
func (s *ShowsController) GetShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := s.showsRepo.GetShowWithImages(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "show not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	seasons, err := s.episodesRepo.GetSeasons(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	followed, err := s.followedRepo.IsFollowed(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := showDetailResponse{
		Show:     detail.Show,
		Images:   detail.Images,
		Seasons:  seasons,
		Followed: followed,
	}
	if entry, err := s.watchedRepo.GetWatchedShow(id); err == nil {
		resp.Watched = entry
	}

	c.JSON(http.StatusOK, resp)
}

// Search finds locally stored shows by title substring.
func (s *ShowsController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter 'q'"})
		return
	}

	results, err := s.showsRepo.SearchShows(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shows": results, "count": len(results)})
}

// Follow adds a show to the followed list.
func (s *ShowsController) Follow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := s.showsRepo.GetShowByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "show not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.followedRepo.Follow(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "followed"})
}

// Unfollow removes a show from the followed list.
func (s *ShowsController) Unfollow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.followedRepo.Unfollow(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

type watchEpisodeRequest struct {
	EpisodeID uint       `json:"episode_id" binding:"required"`
	WatchedAt *time.Time `json:"watched_at"`
}

// WatchEpisode records an episode watch for later upload.
func (s *ShowsController) WatchEpisode(c *gin.Context) {
	var req watchEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	watchedAt := time.Now()
	if req.WatchedAt != nil {
		watchedAt = *req.WatchedAt
	}

	entry, err := s.watchedRepo.AddEpisodeWatch(req.EpisodeID, watchedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Refresh enqueues a background metadata refresh for a single show.
func (s *ShowsController) Refresh(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	show, err := s.showsRepo.GetShowByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "show not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.enqueuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue is not running"})
		return
	}

	ids, err := s.enqueuer.Add(tasks.RefreshShowTask{TraktID: int64(show.TraktID)}).Save()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"status": "refresh queued"}
	if len(ids) > 0 {
		resp["task_id"] = ids[0]
	}
	c.JSON(http.StatusAccepted, resp)
}

func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid show id"})
		return 0, false
	}
	return uint(id), true
}
