// Package settingsstore exposes typed application settings over the settings
// repository. Boolean library flags are additionally observable: toggling a
// flag immediately changes the value emitted to subscribers.
//
// Priority for reads: database > environment > default.
package settingsstore

import (
	"github.com/anselmoalexandre/tivi/internal/database/settings"
	"github.com/anselmoalexandre/tivi/internal/entities"
	"github.com/anselmoalexandre/tivi/internal/observe"
)

type SettingsStore struct {
	repo *settings.Repository

	followedActive *observe.Value[bool]
	watchedActive  *observe.Value[bool]
}

func New(repo *settings.Repository) *SettingsStore {
	s := &SettingsStore{repo: repo}
	s.followedActive = observe.NewValueOf(s.repo.GetBool(entities.SettingKeyLibraryFollowedActive, true))
	s.watchedActive = observe.NewValueOf(s.repo.GetBool(entities.SettingKeyLibraryWatchedActive, true))
	return s
}

// GetFollowedActive reports whether followed shows are included in the
// library listing. Defaults to true.
func (s *SettingsStore) GetFollowedActive() bool {
	value, _ := s.followedActive.Get()
	return value
}

func (s *SettingsStore) SetFollowedActive(active bool) error {
	if err := s.repo.SetBool(entities.SettingKeyLibraryFollowedActive, active); err != nil {
		return err
	}
	s.followedActive.Set(active)
	return nil
}

// ObserveFollowedActive returns the observable followed-inclusion flag.
func (s *SettingsStore) ObserveFollowedActive() *observe.Value[bool] {
	return s.followedActive
}

// GetWatchedActive reports whether watched shows are included in the library
// listing. Defaults to true.
func (s *SettingsStore) GetWatchedActive() bool {
	value, _ := s.watchedActive.Get()
	return value
}

func (s *SettingsStore) SetWatchedActive(active bool) error {
	if err := s.repo.SetBool(entities.SettingKeyLibraryWatchedActive, active); err != nil {
		return err
	}
	s.watchedActive.Set(active)
	return nil
}

// ObserveWatchedActive returns the observable watched-inclusion flag.
func (s *SettingsStore) ObserveWatchedActive() *observe.Value[bool] {
	return s.watchedActive
}
