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
		Extraction
		Media
		Inbox
		Tasks
		Audit
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
	Extraction struct {
		Workers        int
		StyleRolesPath string // YAML role table; empty uses the built-in table
	}
	Media struct {
		Dir       string
		URLPrefix string
		MaxWidth  int // Wider images are downscaled on publish, 0 disables
	}
	Inbox struct {
		Enabled  bool
		Dir      string
		Schedule string // Cron format: "*/15 * * * *" = every 15 minutes
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		ReportDir       string // Run reports are written here, empty disables
		RetentionDays   int    // Days to keep audit events (default: 90)
		CleanupSchedule string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("extract_workers", 4)
	v.SetDefault("style_roles_path", "")

	v.SetDefault("media_dir", DefaultMediaDir)
	v.SetDefault("media_url_prefix", "/media")
	v.SetDefault("media_max_width", 1600)

	v.SetDefault("inbox_enabled", false)
	v.SetDefault("inbox_dir", "")
	v.SetDefault("inbox_schedule", DefaultInboxSchedule)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_report_dir", "")
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

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
		Extraction: Extraction{
			Workers:        v.GetInt("EXTRACT_WORKERS"),
			StyleRolesPath: v.GetString("STYLE_ROLES_PATH"),
		},
		Media: Media{
			Dir:       v.GetString("MEDIA_DIR"),
			URLPrefix: v.GetString("MEDIA_URL_PREFIX"),
			MaxWidth:  v.GetInt("MEDIA_MAX_WIDTH"),
		},
		Inbox: Inbox{
			Enabled:  v.GetBool("INBOX_ENABLED"),
			Dir:      v.GetString("INBOX_DIR"),
			Schedule: v.GetString("INBOX_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			ReportDir:       v.GetString("AUDIT_REPORT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
	}
}
