package config

import "github.com/spf13/viper"

type (
	Config struct {
		HTTP
		Database
		Snapshot
		Identity
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Snapshot struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every five minutes
	}
	Identity struct {
		// UserID is the single-user identity. Empty disables persistence
		// (every remote-backed mutation fails with an authentication error).
		UserID string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8177)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", "./shelfmark.db")
	v.SetDefault("snapshot_enabled", true)
	v.SetDefault("snapshot_schedule", "*/5 * * * *")
	v.SetDefault("user_id", "local")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("port"),
			Host: v.GetString("host"),
		},
		Database: Database{
			Path: v.GetString("database_path"),
		},
		Snapshot: Snapshot{
			Enabled:  v.GetBool("snapshot_enabled"),
			Schedule: v.GetString("snapshot_schedule"),
		},
		Identity: Identity{
			UserID: v.GetString("user_id"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("shutdown_timeout_in_seconds"),
		},
	}
}
