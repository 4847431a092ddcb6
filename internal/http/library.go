package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/presenter"
)

// LibraryController exposes the library screen state over HTTP. Events are
// dispatched to the presenter; clients poll or re-fetch the state snapshot.
type LibraryController struct {
	presenter *presenter.LibraryPresenter
}

func NewLibraryController(p *presenter.LibraryPresenter) *LibraryController {
	return &LibraryController{presenter: p}
}

// GetState returns the current library view state.
func (l *LibraryController) GetState(c *gin.Context) {
	state, _ := l.presenter.State().Get()
	c.JSON(http.StatusOK, state)
}

type libraryEventRequest struct {
	Type      string `json:"type" binding:"required"`
	Filter    string `json:"filter"`
	Sort      string `json:"sort"`
	MessageID uint64 `json:"message_id"`
	ShowID    uint   `json:"show_id"`
}

// DispatchEvent maps a JSON event onto the presenter's event set.
func (l *LibraryController) DispatchEvent(c *gin.Context) {
	var req libraryEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload: " + err.Error()})
		return
	}

	var event presenter.LibraryEvent
	switch req.Type {
	case "change_filter":
		event = presenter.ChangeFilter{Filter: req.Filter}
	case "change_sort":
		sort := shows.SortOption(req.Sort)
		switch sort {
		case shows.SortLastWatched, shows.SortAlphabetical, shows.SortDateAdded:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort option: " + req.Sort})
			return
		}
		event = presenter.ChangeSort{Sort: sort}
	case "clear_message":
		event = presenter.ClearMessage{ID: req.MessageID}
	case "refresh":
		event = presenter.Refresh{}
	case "toggle_followed_active":
		event = presenter.ToggleFollowedActive{}
	case "toggle_watched_active":
		event = presenter.ToggleWatchedActive{}
	case "open_account":
		event = presenter.OpenAccount{}
	case "open_show_details":
		event = presenter.OpenShowDetails{ShowID: req.ShowID}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type: " + req.Type})
		return
	}

	l.presenter.OnEvent(event)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// LoadMore loads the next library page.
func (l *LibraryController) LoadMore(c *gin.Context) {
	l.presenter.LoadMore()
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
