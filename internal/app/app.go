package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/auth"
	"github.com/vovakirdan/relaychat-server/internal/config"
	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/store"
	"github.com/vovakirdan/relaychat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/relaychat-server/internal/transport/http"
)

// App wires together the hub, moderation store and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	var st store.Store
	if cfg.DatabasePath != "" {
		sqliteStore, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = sqliteStore
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("moderation store initialized")
	} else {
		logger.Info().Msg("moderation persistence disabled")
	}

	creds := auth.NewCredentials(cfg.Admins)
	hub := core.NewHub(cfg.Limits(), creds, st, logger)

	if st != nil {
		if err := seedModeration(hub, st); err != nil {
			st.Close()
			return nil, err
		}
	}

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// seedModeration preloads persisted bans and mutes into the hub. Must
// run before the hub starts.
func seedModeration(hub *core.Hub, st store.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bans, err := st.LoadBans(ctx)
	if err != nil {
		return fmt.Errorf("load bans: %w", err)
	}
	hub.SeedBans(bans)

	mutes, err := st.LoadMutes(ctx)
	if err != nil {
		return fmt.Errorf("load mutes: %w", err)
	}
	hub.SeedMutes(mutes)
	return nil
}

// Run starts the hub and HTTP server and blocks until context
// cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the moderation store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
