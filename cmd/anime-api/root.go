package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/anime-api/internal/config"
	loggerPkg "github.com/deppfellow/anime-api/internal/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var rootCmd = &cobra.Command{
	Use:   "anime-api",
	Short: "REST API for managing animes",
	Long: `anime-api serves a CRUD API for animes behind HTTP Basic authentication.

Configuration is read from ANIME_* environment variables and an optional .env
file, e.g. ANIME_DATABASE__DRIVER=sqlite ANIME_DATABASE__PATH=anime.db.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the root logger. The caller
// owns the returned LoggerService and must shut it down.
func bootstrap() (*config.Config, *loggerPkg.LoggerService, *zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService, err := loggerPkg.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to start New Relic: %w", err)
	}

	log := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, &log, nil
}
