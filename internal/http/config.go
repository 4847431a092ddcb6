package http

import (
	"github.com/anselmoalexandre/tivi/internal/database"
	"github.com/anselmoalexandre/tivi/internal/database/episodes"
	"github.com/anselmoalexandre/tivi/internal/database/followedshows"
	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	"github.com/anselmoalexandre/tivi/internal/database/watched"
	"github.com/anselmoalexandre/tivi/internal/presenter"
	"github.com/anselmoalexandre/tivi/internal/scheduler"
	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	syncsvc "github.com/anselmoalexandre/tivi/internal/sync"
	"github.com/anselmoalexandre/tivi/internal/tasks"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// RouterConfig carries every dependency the HTTP layer needs. Optional
// fields (Scheduler, TaskClient) may be nil when the corresponding
// subsystem is disabled.
type RouterConfig struct {
	Database *database.Database
	Version  string

	ShowsRepo    *shows.Repository
	EpisodesRepo *episodes.Repository
	FollowedRepo *followedshows.Repository
	WatchedRepo  *watched.Repository
	UsersRepo    *users.Repository

	Settings  *settingsstore.SettingsStore
	Tokens    *tokenstore.TokenStore
	Catalog   *trakt.Client
	Service   *syncsvc.Service
	Presenter *presenter.LibraryPresenter
	Scheduler *scheduler.CatalogSyncScheduler

	Sessions   *SessionManager
	TaskClient *tasks.Client
}
