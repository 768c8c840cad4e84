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
		Tokens
		Auth
		Email
		Tasks
		Cleanup
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
		// ClientURL is the public origin embedded into email links
		// (verification and password-reset URLs).
		ClientURL string
		// Development disables the Secure flag on auth cookies.
		Development bool
	}

	Database struct {
		Path string
	}

	// Tokens holds the signing secrets and lifetimes for the two token kinds.
	// The secrets must differ: an access token must never verify against the
	// refresh secret or vice versa.
	Tokens struct {
		AccessSecret  string
		RefreshSecret string
		AccessTTL     time.Duration
		RefreshTTL    time.Duration
	}

	Auth struct {
		BcryptCost       int
		RotationWindow   time.Duration // refresh within this window of expiry rotates the session
		EmailVerifyTTL   time.Duration
		PasswordResetTTL time.Duration

		// Password-reset rate limiting
		ResetWindow    time.Duration // trailing window for counting reset requests
		ResetThreshold int           // extra requests allowed inside the window
	}

	Email struct {
		ResendAPIKey string
		Sender       string
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

	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("client_url", "http://localhost:3000")
	v.SetDefault("development", false)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Token defaults
	v.SetDefault("jwt_access_secret", "")
	v.SetDefault("jwt_refresh_secret", "")
	v.SetDefault("jwt_access_ttl", DefaultAccessTokenTTL)
	v.SetDefault("jwt_refresh_ttl", DefaultRefreshTokenTTL)

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_rotation_window", DefaultSessionRotationWindow)
	v.SetDefault("auth_email_verify_ttl", DefaultEmailVerifyTTL)
	v.SetDefault("auth_password_reset_ttl", DefaultPasswordResetTTL)
	v.SetDefault("auth_reset_window", "5m")
	v.SetDefault("auth_reset_threshold", 1)

	// Email defaults
	v.SetDefault("resend_api_key", "")
	v.SetDefault("email_sender", "no-reply@localhost")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Expired-record sweep defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			ClientURL:                v.GetString("CLIENT_URL"),
			Development:              v.GetBool("DEVELOPMENT"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tokens: Tokens{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
			AccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL:    v.GetDuration("JWT_REFRESH_TTL"),
		},
		Auth: Auth{
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			RotationWindow:   v.GetDuration("AUTH_ROTATION_WINDOW"),
			EmailVerifyTTL:   v.GetDuration("AUTH_EMAIL_VERIFY_TTL"),
			PasswordResetTTL: v.GetDuration("AUTH_PASSWORD_RESET_TTL"),
			ResetWindow:      v.GetDuration("AUTH_RESET_WINDOW"),
			ResetThreshold:   v.GetInt("AUTH_RESET_THRESHOLD"),
		},
		Email: Email{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			Sender:       v.GetString("EMAIL_SENDER"),
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
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
		},
	}
}
