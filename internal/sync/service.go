// Package sync pulls the remote catalog into the local database. Each
// operation drives a SyncProgress row through running/completed/failed so the
// UI can report what is happening.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/database/episodes"
	"github.com/anselmoalexandre/tivi/internal/database/followedshows"
	"github.com/anselmoalexandre/tivi/internal/database/shows"
	"github.com/anselmoalexandre/tivi/internal/database/syncstate"
	"github.com/anselmoalexandre/tivi/internal/database/users"
	"github.com/anselmoalexandre/tivi/internal/database/watched"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/tokenstore"
	"github.com/anselmoalexandre/tivi/internal/trakt"
)

// ErrNotAuthenticated is returned by auth-guarded operations while logged out.
var ErrNotAuthenticated = errors.New("not signed in to the catalog")

// Service synchronizes shows, seasons and watch history with the catalog.
type Service struct {
	client *trakt.Client
	tokens *tokenstore.TokenStore

	showsRepo    *shows.Repository
	episodesRepo *episodes.Repository
	watchedRepo  *watched.Repository
	followedRepo *followedshows.Repository
	usersRepo    *users.Repository

	showProgress    *syncstate.Repository
	watchedProgress *syncstate.Repository
}

// NewService creates a sync service over the shared database connection.
func NewService(db *gorm.DB, client *trakt.Client, tokens *tokenstore.TokenStore) *Service {
	return &Service{
		client:          client,
		tokens:          tokens,
		showsRepo:       shows.NewRepository(db),
		episodesRepo:    episodes.NewRepository(db),
		watchedRepo:     watched.NewRepository(db),
		followedRepo:    followedshows.NewRepository(db),
		usersRepo:       users.NewRepository(db),
		showProgress:    syncstate.NewRepository(db, entities.SyncTypeShows),
		watchedProgress: syncstate.NewRepository(db, entities.SyncTypeWatched),
	}
}

// ShowProgress returns the latest show-sync progress row.
func (s *Service) ShowProgress() (*entities.SyncProgress, error) {
	return s.showProgress.GetSyncProgress()
}

// WatchedProgress returns the latest watched-sync progress row.
func (s *Service) WatchedProgress() (*entities.SyncProgress, error) {
	return s.watchedProgress.GetSyncProgress()
}

// SyncShow fetches one show with its seasons and images and stores it.
func (s *Service) SyncShow(ctx context.Context, traktID int64) error {
	token, _ := s.tokens.GetToken()

	if err := s.showProgress.StartSync(1); err != nil {
		return err
	}

	if err := s.syncOneShow(ctx, token, traktID); err != nil {
		_ = s.showProgress.CompleteSync(false, err.Error())
		return err
	}

	_ = s.showProgress.UpdateProgress(1, 1, 0, 0, "")
	return s.showProgress.CompleteSync(true, "")
}

// SyncLibrary refreshes every followed show from the catalog.
func (s *Service) SyncLibrary(ctx context.Context) error {
	token, _ := s.tokens.GetToken()

	entries, err := s.followedRepo.ListFollowed()
	if err != nil {
		return err
	}

	if err := s.showProgress.StartSync(len(entries)); err != nil {
		return err
	}

	var processed, succeeded, failed int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			_ = s.showProgress.CompleteSync(false, "cancelled")
			return err
		}

		processed++
		if err := s.syncOneShow(ctx, token, int64(entry.Show.TraktID)); err != nil {
			log.Printf("Library sync: failed to refresh '%s': %v", entry.Show.Title, err)
			failed++
		} else {
			succeeded++
		}
		_ = s.showProgress.UpdateProgress(processed, succeeded, failed, 0, entry.Show.Title)
	}

	if failed > 0 && succeeded == 0 {
		msg := fmt.Sprintf("all %d shows failed to refresh", failed)
		_ = s.showProgress.CompleteSync(false, msg)
		return errors.New(msg)
	}

	return s.showProgress.CompleteSync(true, "")
}

// SyncWatched pulls the watch history from the catalog and reconciles local
// pending uploads. It requires a signed-in user.
func (s *Service) SyncWatched(ctx context.Context) error {
	token, err := s.tokens.GetToken()
	if err != nil {
		if errors.Is(err, tokenstore.ErrNoToken) {
			return ErrNotAuthenticated
		}
		return err
	}

	remote, err := s.client.WatchedShows(ctx, token)
	if err != nil {
		return err
	}

	if err := s.watchedProgress.StartSync(len(remote)); err != nil {
		return err
	}

	var processed, succeeded, failed int
	for _, item := range remote {
		if err := ctx.Err(); err != nil {
			_ = s.watchedProgress.CompleteSync(false, "cancelled")
			return err
		}

		processed++
		if err := s.storeWatched(item); err != nil {
			log.Printf("Watched sync: failed to store '%s': %v", item.Show.Title, err)
			failed++
		} else {
			succeeded++
		}
		_ = s.watchedProgress.UpdateProgress(processed, succeeded, failed, 0, item.Show.Title)
	}

	// The catalog now reflects our uploads: clear the pending markers.
	if err := s.reconcilePending(); err != nil {
		log.Printf("Watched sync: failed to reconcile pending uploads: %v", err)
	}

	return s.watchedProgress.CompleteSync(failed == 0, "")
}

// SyncUserProfile fetches the signed-in user's profile and stores it.
func (s *Service) SyncUserProfile(ctx context.Context) error {
	token, err := s.tokens.GetToken()
	if err != nil {
		if errors.Is(err, tokenstore.ErrNoToken) {
			return ErrNotAuthenticated
		}
		return err
	}

	profile, err := s.client.UserProfile(ctx, token)
	if err != nil {
		return err
	}

	return s.usersRepo.UpsertMe(&entities.TraktUser{
		Username:  profile.Username,
		Name:      profile.Name,
		VIP:       profile.VIP,
		AvatarURL: profile.Images.Avatar.Full,
	})
}

func (s *Service) syncOneShow(ctx context.Context, token string, traktID int64) error {
	data, err := s.client.Show(ctx, token, traktID)
	if err != nil {
		return err
	}

	show := showFromData(data)
	if err := s.showsRepo.UpsertShow(show); err != nil {
		return err
	}

	seasonData, err := s.client.Seasons(ctx, token, traktID)
	if err != nil {
		return err
	}

	return s.episodesRepo.UpsertSeasons(show.ID, seasonsFromData(seasonData))
}

func (s *Service) storeWatched(item trakt.WatchedShowData) error {
	show := showFromData(&item.Show)
	if err := s.showsRepo.UpsertShow(show); err != nil {
		return err
	}

	lastWatched := time.Now()
	if item.LastWatchedAt != nil {
		lastWatched = *item.LastWatchedAt
	}
	return s.watchedRepo.UpsertWatchedShow(show.ID, lastWatched, item.Plays)
}

func (s *Service) reconcilePending() error {
	pendingFollows, err := s.followedRepo.ListPending()
	if err != nil {
		return err
	}
	followIDs := make([]uint, 0, len(pendingFollows))
	for _, entry := range pendingFollows {
		followIDs = append(followIDs, entry.ID)
	}
	if err := s.followedRepo.MarkSynced(followIDs); err != nil {
		return err
	}

	pendingWatches, err := s.watchedRepo.ListPendingEpisodeWatches()
	if err != nil {
		return err
	}
	watchIDs := make([]uint, 0, len(pendingWatches))
	for _, entry := range pendingWatches {
		watchIDs = append(watchIDs, entry.ID)
	}
	return s.watchedRepo.MarkEpisodeWatchesSynced(watchIDs)
}

func showFromData(data *trakt.ShowData) *entities.Show {
	show := &entities.Show{
		TraktID:     int(data.IDs.Trakt),
		TmdbID:      int(data.IDs.Tmdb),
		Title:       data.Title,
		Overview:    data.Overview,
		Network:     data.Network,
		Status:      statusFromData(data.Status),
		Runtime:     data.Runtime,
		FirstAired:  data.FirstAired,
		TraktRating: float32(data.Rating),
		TraktVotes:  data.Votes,
	}

	for _, img := range data.Images {
		kind := entities.ImageKind(img.Kind)
		if kind != entities.ImageKindBackdrop && kind != entities.ImageKindPoster {
			continue
		}
		show.Images = append(show.Images, entities.ShowImage{
			Kind:   kind,
			URL:    img.URL,
			Rating: float32(img.Rating),
		})
	}

	return show
}

func seasonsFromData(data []trakt.SeasonData) []entities.Season {
	seasons := make([]entities.Season, 0, len(data))
	for _, sd := range data {
		season := entities.Season{
			TraktID:      int(sd.IDs.Trakt),
			Number:       sd.Number,
			Title:        sd.Title,
			EpisodeCount: len(sd.Episodes),
		}
		for _, ed := range sd.Episodes {
			season.Episodes = append(season.Episodes, entities.Episode{
				TraktID:    int(ed.IDs.Trakt),
				Number:     ed.Number,
				Title:      ed.Title,
				Overview:   ed.Overview,
				FirstAired: ed.FirstAired,
			})
		}
		seasons = append(seasons, season)
	}
	return seasons
}

func statusFromData(status string) entities.ShowStatus {
	switch status {
	case "returning series":
		return entities.ShowStatusReturning
	case "in production":
		return entities.ShowStatusInProduction
	case "planned":
		return entities.ShowStatusPlanned
	case "ended":
		return entities.ShowStatusEnded
	case "canceled":
		return entities.ShowStatusCanceled
	default:
		return entities.ShowStatus(status)
	}
}
