// Package presenter composes observable inputs into immutable view states.
//
// A presenter owns a scope that is cancelled on Close, subscribes to the
// stores it depends on, and republishes a complete snapshot whenever any
// input changes. Consumers never mutate a view state; they wait for the next
// one.
package presenter

import (
	"context"
	"errors"
	"log"
	"sync"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/interactor"
	"github.com/anselmoalexandre/tivi/internal/observe"
	"github.com/anselmoalexandre/tivi/internal/paging"
	"github.com/anselmoalexandre/tivi/internal/settingsstore"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
)

// Navigator receives navigation requests from presenters. The UI layer
// decides what "opening" a destination means.
type Navigator interface {
	OpenAccount()
	OpenShowDetails(showID uint)
}

// LibraryViewState is an immutable snapshot of the library screen. It is
// replaced wholesale on every recomposition.
type LibraryViewState struct {
	Authorized     bool                                   `json:"authorized"`
	User           *entities.TraktUser                    `json:"user,omitempty"`
	Items          paging.PagedList[entities.LibraryShow] `json:"items"`
	Filter         string                                 `json:"filter"`
	Sort           shows.SortOption                       `json:"sort"`
	FollowedActive bool                                   `json:"followed_active"`
	WatchedActive  bool                                   `json:"watched_active"`
	Loading        bool                                   `json:"loading"`
	Message        *interactor.UiMessage                  `json:"message,omitempty"`
}

// EmptyLibraryViewState is the well-defined default before any data loads.
func EmptyLibraryViewState() LibraryViewState {
	return LibraryViewState{
		Sort:           shows.SortLastWatched,
		FollowedActive: true,
		WatchedActive:  true,
	}
}

// LibraryEvent is one UI intent on the library screen. The set is closed:
// each event maps to exactly one handler branch.
type LibraryEvent interface{ isLibraryEvent() }

type ChangeFilter struct{ Filter string }

type ChangeSort struct{ Sort shows.SortOption }

type ClearMessage struct{ ID uint64 }

// Refresh reloads the local page and, when authorized, pulls fresh data from
// the catalog.
type Refresh struct{}

type ToggleFollowedActive struct{}

type ToggleWatchedActive struct{}

type OpenAccount struct{}

type OpenShowDetails struct{ ShowID uint }

func (ChangeFilter) isLibraryEvent()         {}
func (ChangeSort) isLibraryEvent()           {}
func (ClearMessage) isLibraryEvent()         {}
func (Refresh) isLibraryEvent()              {}
func (ToggleFollowedActive) isLibraryEvent() {}
func (ToggleWatchedActive) isLibraryEvent()  {}
func (OpenAccount) isLibraryEvent()          {}
func (OpenShowDetails) isLibraryEvent()      {}

// LibraryUpdater pulls fresh library data from the remote catalog.
type LibraryUpdater interface {
	SyncLibrary(ctx context.Context) error
}

// libraryDeps is the dependency tuple of the paged collection. The pager is
// re-run only when this tuple changes.
type libraryDeps struct {
	filter         string
	sort           shows.SortOption
	followedActive bool
	watchedActive  bool
}

// LibraryPresenter drives the library screen.
type LibraryPresenter struct {
	tokens    *tokenstore.TokenStore
	usersRepo *users.Repository
	settings  *settingsstore.SettingsStore
	updater   LibraryUpdater
	navigator Navigator
	loading   *interactor.LoadingCounter
	messages  *interactor.MessageManager
	pager     *paging.Pager[entities.LibraryShow]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	current  LibraryViewState
	lastDeps libraryDeps

	state *observe.Value[LibraryViewState]
}

// NewLibraryPresenter wires the presenter but does not start it.
func NewLibraryPresenter(
	tokens *tokenstore.TokenStore,
	usersRepo *users.Repository,
	showsRepo *shows.Repository,
	settings *settingsstore.SettingsStore,
	updater LibraryUpdater,
	navigator Navigator,
	pageSize int,
) *LibraryPresenter {
	ctx, cancel := context.WithCancel(context.Background())

	p := &LibraryPresenter{
		tokens:    tokens,
		usersRepo: usersRepo,
		settings:  settings,
		updater:   updater,
		navigator: navigator,
		loading:   interactor.NewLoadingCounter(),
		messages:  interactor.NewMessageManager(),
		ctx:       ctx,
		cancel:    cancel,
		current:   EmptyLibraryViewState(),
		state:     observe.NewValueOf(EmptyLibraryViewState()),
	}

	p.pager = paging.NewPager(func(ctx context.Context, limit, offset int) ([]entities.LibraryShow, error) {
		p.mu.Lock()
		query := shows.LibraryQuery{
			Filter:         p.current.Filter,
			Sort:           p.current.Sort,
			FollowedActive: p.current.FollowedActive,
			WatchedActive:  p.current.WatchedActive,
			Limit:          limit,
			Offset:         offset,
		}
		p.mu.Unlock()
		return showsRepo.LibraryShows(query)
	}, pageSize)

	return p
}

// Start subscribes to all inputs and loads the first page.
func (p *LibraryPresenter) Start() {
	p.mu.Lock()
	p.current.Authorized = p.tokens.IsLoggedIn()
	p.current.FollowedActive = p.settings.GetFollowedActive()
	p.current.WatchedActive = p.settings.GetWatchedActive()
	p.lastDeps = p.depsLocked()
	p.mu.Unlock()

	watchValue(p, p.tokens.ObserveAuthState(), p.onAuthState)
	watchValue(p, p.settings.ObserveFollowedActive(), func(active bool) {
		p.update(func(s *LibraryViewState) { s.FollowedActive = active })
		p.resubscribeIfNeeded()
	})
	watchValue(p, p.settings.ObserveWatchedActive(), func(active bool) {
		p.update(func(s *LibraryViewState) { s.WatchedActive = active })
		p.resubscribeIfNeeded()
	})
	watchValue(p, p.pager.Observable(), func(list paging.PagedList[entities.LibraryShow]) {
		p.update(func(s *LibraryViewState) { s.Items = list })
	})
	watchValue(p, p.loading.Observable(), func(loading bool) {
		p.update(func(s *LibraryViewState) { s.Loading = loading })
	})
	watchValue(p, p.messages.Observable(), func(queue []interactor.UiMessage) {
		p.update(func(s *LibraryViewState) {
			if len(queue) == 0 {
				s.Message = nil
				return
			}
			head := queue[0]
			s.Message = &head
		})
	})

	p.refreshLocal()
}

// State returns the observable view state.
func (p *LibraryPresenter) State() *observe.Value[LibraryViewState] {
	return p.state
}

// OnEvent dispatches a single UI event.
func (p *LibraryPresenter) OnEvent(event LibraryEvent) {
	switch e := event.(type) {
	case ChangeFilter:
		p.update(func(s *LibraryViewState) { s.Filter = e.Filter })
		p.resubscribeIfNeeded()
	case ChangeSort:
		p.update(func(s *LibraryViewState) { s.Sort = e.Sort })
		p.resubscribeIfNeeded()
	case ClearMessage:
		p.messages.ClearMessage(e.ID)
	case Refresh:
		p.refresh()
	case ToggleFollowedActive:
		if err := p.settings.SetFollowedActive(!p.settings.GetFollowedActive()); err != nil {
			p.messages.EmitMessage("failed to update library preferences")
		}
	case ToggleWatchedActive:
		if err := p.settings.SetWatchedActive(!p.settings.GetWatchedActive()); err != nil {
			p.messages.EmitMessage("failed to update library preferences")
		}
	case OpenAccount:
		p.navigator.OpenAccount()
	case OpenShowDetails:
		p.navigator.OpenShowDetails(e.ShowID)
	}
}

// LoadMore loads the next library page.
func (p *LibraryPresenter) LoadMore() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.pager.LoadMore(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.messages.EmitMessage("failed to load more shows")
		}
	}()
}

// Close cancels the presenter scope and terminates the state stream.
func (p *LibraryPresenter) Close() {
	p.cancel()
	p.wg.Wait()
	p.state.Close()
}

// watch forwards values from an observable into a handler until Close.
func watchValue[T any](p *LibraryPresenter, v *observe.Value[T], handle func(T)) {
	sub := v.Subscribe()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer sub.Cancel()
		for {
			select {
			case <-p.ctx.Done():
				return
			case value, ok := <-sub.C:
				if !ok {
					return
				}
				handle(value)
			}
		}
	}()
}

func (p *LibraryPresenter) onAuthState(state tokenstore.AuthState) {
	authorized := state == tokenstore.AuthStateLoggedIn

	var user *entities.TraktUser
	if authorized {
		me, err := p.usersRepo.GetMe()
		switch {
		case err == nil:
			user = me
		case !errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("Failed to load user profile: %v", err)
		}
	}

	p.update(func(s *LibraryViewState) {
		s.Authorized = authorized
		s.User = user
	})
}

// refresh reloads the local page and, when authorized, pulls from the remote
// catalog. While logged out no network update happens.
func (p *LibraryPresenter) refresh() {
	p.mu.Lock()
	authorized := p.current.Authorized
	p.mu.Unlock()

	if !authorized {
		p.refreshLocal()
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loading.AddLoader()
		defer p.loading.RemoveLoader()

		if err := p.updater.SyncLibrary(p.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Library refresh failed: %v", err)
			p.messages.EmitMessage("failed to refresh library")
			return
		}
		if err := p.pager.Refresh(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.messages.EmitMessage("failed to reload library")
		}
	}()
}

func (p *LibraryPresenter) refreshLocal() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.pager.Refresh(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.messages.EmitMessage("failed to reload library")
		}
	}()
}

// resubscribeIfNeeded re-runs the paged collection when and only when its
// dependency tuple actually changed.
func (p *LibraryPresenter) resubscribeIfNeeded() {
	p.mu.Lock()
	deps := p.depsLocked()
	changed := deps != p.lastDeps
	if changed {
		p.lastDeps = deps
	}
	p.mu.Unlock()

	if changed {
		p.refreshLocal()
	}
}

func (p *LibraryPresenter) depsLocked() libraryDeps {
	return libraryDeps{
		filter:         p.current.Filter,
		sort:           p.current.Sort,
		followedActive: p.current.FollowedActive,
		watchedActive:  p.current.WatchedActive,
	}
}

// update mutates the pending snapshot under lock and publishes a copy.
func (p *LibraryPresenter) update(mutate func(*LibraryViewState)) {
	p.mu.Lock()
	mutate(&p.current)
	snapshot := p.current
	p.mu.Unlock()
	p.state.Set(snapshot)
}
