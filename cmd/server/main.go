package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/relaychat-server/internal/app"
	"github.com/vovakirdan/relaychat-server/internal/auth"
	"github.com/vovakirdan/relaychat-server/internal/config"
	"github.com/vovakirdan/relaychat-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "relaychat-server",
		Short:         "Real-time multi-room chat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(configPath)
		},
	}

	var tokenName string
	var tokenTTL time.Duration
	token := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the diagnostics API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(configPath, tokenName, tokenTTL)
		},
	}
	token.Flags().StringVar(&tokenName, "name", "ops", "name embedded in the token")
	token.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	hash := &cobra.Command{
		Use:   "hash <password>",
		Short: "Generate a bcrypt hash for the admins table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}

	root.AddCommand(serve, token, hash)
	return root
}

func runServe(configPath string) error {
	bootstrapLogger := log.New("info")

	cfg, path, err := config.Load(bootstrapLogger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting relaychat server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runToken(configPath, name string, ttl time.Duration) error {
	logger := log.New("error")

	cfg, _, err := config.Load(logger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("jwt_secret is not configured; set it to enable the diagnostics API")
	}

	token, err := auth.GenerateToken(&auth.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    ttl,
	}, name)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Println(token)
	return nil
}
