package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Catalog
		CatalogSync
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	// Catalog configures the remote media-catalog API.
	Catalog struct {
		BaseURL  string
		ClientID string
	}

	// CatalogSync configures the periodic library refresh. These values are
	// environment fallbacks; database settings take priority at runtime.
	CatalogSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Auth struct {
		TokenEncryptionKey string // Base64 key for sealing the catalog token
		TokenKeyFilePath   string
		SessionLifetime    time.Duration
		SecureCookies      bool // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Catalog defaults
	v.SetDefault("catalog_base_url", "https://api.trakt.tv")
	v.SetDefault("catalog_client_id", "")
	v.SetDefault("catalog_sync_enabled", false)
	v.SetDefault("catalog_sync_schedule", "0 */6 * * *") // Every 6 hours

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Auth defaults
	v.SetDefault("token_encryption_key", "") // Key file is used when empty
	v.SetDefault("token_key_file_path", "")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Catalog: Catalog{
			BaseURL:  v.GetString("CATALOG_BASE_URL"),
			ClientID: v.GetString("CATALOG_CLIENT_ID"),
		},
		CatalogSync: CatalogSync{
			Enabled:  v.GetBool("CATALOG_SYNC_ENABLED"),
			Schedule: v.GetString("CATALOG_SYNC_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
			TokenKeyFilePath:   v.GetString("TOKEN_KEY_FILE_PATH"),
			SessionLifetime:    v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:      v.GetBool("AUTH_SECURE_COOKIES"),
		},
	}
}
