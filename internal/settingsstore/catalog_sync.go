package settingsstore

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// CatalogSyncConfig is the effective configuration for the periodic catalog
// sync.
type CatalogSyncConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// CatalogSyncStatus is the outcome of the last sync run.
type CatalogSyncStatus struct {
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	Status      string     `json:"status,omitempty"`  // "success", "failed", "running", ""
	Message     string     `json:"message,omitempty"` // Error message or stats summary
	ShowsSynced int        `json:"shows_synced,omitempty"`
}

// GetCatalogSyncEnabled returns whether periodic sync is enabled
// (database > env > default).
func (s *SettingsStore) GetCatalogSyncEnabled() bool {
	setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncEnabled)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("CATALOG_SYNC_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	return false
}

// SetCatalogSyncEnabled saves the enabled setting to the database.
func (s *SettingsStore) SetCatalogSyncEnabled(enabled bool) error {
	return s.repo.SetSetting(entities.SettingKeyCatalogSyncEnabled, strconv.FormatBool(enabled))
}

// GetCatalogSyncSchedule returns the cron schedule (database > env > default).
func (s *SettingsStore) GetCatalogSyncSchedule() string {
	setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envVal := os.Getenv("CATALOG_SYNC_SCHEDULE"); envVal != "" {
		return envVal
	}

	// Default: every 6 hours
	return "0 */6 * * *"
}

// SetCatalogSyncSchedule saves the schedule after validating it.
func (s *SettingsStore) SetCatalogSyncSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyCatalogSyncSchedule, schedule)
}

// GetCatalogSyncConfig returns the effective sync configuration.
func (s *SettingsStore) GetCatalogSyncConfig() CatalogSyncConfig {
	return CatalogSyncConfig{
		Enabled:  s.GetCatalogSyncEnabled(),
		Schedule: s.GetCatalogSyncSchedule(),
	}
}

// GetCatalogSyncStatus returns the last sync outcome.
func (s *SettingsStore) GetCatalogSyncStatus() CatalogSyncStatus {
	status := CatalogSyncStatus{}

	if setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncLastAt); err == nil && setting.Value != "" {
		if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastSyncAt = &ts
		}
	}
	if setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncLastStatus); err == nil {
		status.Status = setting.Value
	}
	if setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncLastMessage); err == nil {
		status.Message = setting.Value
	}
	if setting, err := s.repo.GetSetting(entities.SettingKeyCatalogSyncShowsSynced); err == nil && setting.Value != "" {
		if count, err := strconv.Atoi(setting.Value); err == nil {
			status.ShowsSynced = count
		}
	}

	return status
}

// SetCatalogSyncStatus records the outcome of a sync run.
func (s *SettingsStore) SetCatalogSyncStatus(status, message string, showsSynced int) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.SetSetting(entities.SettingKeyCatalogSyncLastAt, now); err != nil {
		return err
	}
	if err := s.repo.SetSetting(entities.SettingKeyCatalogSyncLastStatus, status); err != nil {
		return err
	}
	if err := s.repo.SetSetting(entities.SettingKeyCatalogSyncLastMessage, message); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyCatalogSyncShowsSynced, strconv.Itoa(showsSynced))
}

// ValidateCronSchedule validates a cron schedule string.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetNextRunTime calculates when the next sync will run for the schedule.
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
