package store

import "context"

// Store persists moderation state so bans and mutes survive restarts.
// Message history is deliberately not persisted.
type Store interface {
	// LoadBans returns every banned nickname.
	LoadBans(ctx context.Context) ([]string, error)
	// LoadMutes returns every muted nickname.
	LoadMutes(ctx context.Context) ([]string, error)

	AddBan(ctx context.Context, nick string) error
	RemoveBan(ctx context.Context, nick string) error
	AddMute(ctx context.Context, nick string) error
	RemoveMute(ctx context.Context, nick string) error

	Close() error
}
