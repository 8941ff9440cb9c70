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
		Pagination
		Backup
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path            string
		MaxOpenConns    int           // Pool capacity; acquisition blocks when exhausted (default: 10)
		MaxIdleConns    int           // Idle connections kept for reuse (default: 5)
		ConnMaxIdleTime time.Duration // Idle connections are recycled after this (default: 5m)
		BusyTimeout     time.Duration // SQLite busy timeout (default: 5s)
		Debug           bool          // Log every SQL statement
	}
	// Pagination holds the fixed page size per entity kind.
	Pagination struct {
		Books      int
		Authors    int
		Genres     int
		Series     int
		Publishers int
		Languages  int
		Years      int
	}
	Backup struct {
		Dir      string
		Enabled  bool   // Scheduled backups
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // json or console
	}
)

// DefaultPagination mirrors the page sizes the catalog views were designed around.
func DefaultPagination() Pagination {
	return Pagination{
		Books:      30,
		Authors:    15,
		Genres:     30,
		Series:     30,
		Publishers: 30,
		Languages:  30,
		Years:      5,
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("database_max_idle_conns", 5)
	v.SetDefault("database_conn_max_idle_time", "5m")
	v.SetDefault("database_busy_timeout", "5s")
	v.SetDefault("database_debug", false)

	pages := DefaultPagination()
	v.SetDefault("page_size_books", pages.Books)
	v.SetDefault("page_size_authors", pages.Authors)
	v.SetDefault("page_size_genres", pages.Genres)
	v.SetDefault("page_size_series", pages.Series)
	v.SetDefault("page_size_publishers", pages.Publishers)
	v.SetDefault("page_size_languages", pages.Languages)
	v.SetDefault("page_size_years", pages.Years)

	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:            v.GetString("DATABASE_PATH"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxIdleTime: v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME"),
			BusyTimeout:     v.GetDuration("DATABASE_BUSY_TIMEOUT"),
			Debug:           v.GetBool("DATABASE_DEBUG"),
		},
		Pagination: Pagination{
			Books:      v.GetInt("PAGE_SIZE_BOOKS"),
			Authors:    v.GetInt("PAGE_SIZE_AUTHORS"),
			Genres:     v.GetInt("PAGE_SIZE_GENRES"),
			Series:     v.GetInt("PAGE_SIZE_SERIES"),
			Publishers: v.GetInt("PAGE_SIZE_PUBLISHERS"),
			Languages:  v.GetInt("PAGE_SIZE_LANGUAGES"),
			Years:      v.GetInt("PAGE_SIZE_YEARS"),
		},
		Backup: Backup{
			Dir:      v.GetString("BACKUP_DIR"),
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
