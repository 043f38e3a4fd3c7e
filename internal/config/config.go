package config

import (
	"time"

	"github.com/vovakirdan/relaychat-server/internal/core"
)

// Config holds server configuration values. Everything here is fixed at
// startup; nothing is runtime-mutable.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// DatabasePath points at the SQLite file persisting ban/mute lists.
	// Empty disables persistence.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// JWTSecret signs diagnostics API tokens. Empty disables /api/stats.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`

	MaxMessageLength int `mapstructure:"max_message_length" yaml:"max_message_length"`
	MaxRoomsPerUser  int `mapstructure:"max_rooms_per_user" yaml:"max_rooms_per_user"`
	MaxUsersPerRoom  int `mapstructure:"max_users_per_room" yaml:"max_users_per_room"`

	// Admins maps reserved nicknames to passwords. Values are either
	// plaintext or bcrypt hashes (see the hash subcommand).
	Admins map[string]string `mapstructure:"admins" yaml:"admins"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	limits := core.DefaultLimits()
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "relaychat.db",
		JWTIssuer:         "relaychat",
		MaxMessageLength:  limits.MaxMessageLength,
		MaxRoomsPerUser:   limits.MaxRoomsPerUser,
		MaxUsersPerRoom:   limits.MaxUsersPerRoom,
		Admins: map[string]string{
			"admin": "securepass123",
			"mod":   "modpassword",
		},
	}
}

// Limits converts the configured protocol constants for the hub.
func (c Config) Limits() core.Limits {
	return core.Limits{
		MaxMessageLength: c.MaxMessageLength,
		MaxRoomsPerUser:  c.MaxRoomsPerUser,
		MaxUsersPerRoom:  c.MaxUsersPerRoom,
	}
}
