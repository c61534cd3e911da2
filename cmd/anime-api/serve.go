package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/anime-api/internal/handler"
	"github.com/deppfellow/anime-api/internal/repository"
	"github.com/deppfellow/anime-api/internal/router"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and block until SIGINT or SIGTERM, then drain
in-flight requests and close the database.

Set ANIME_DATABASE__AUTO_MIGRATE=true to apply migrations on startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loggerService, log, err := bootstrap()
		if err != nil {
			return err
		}

		srv, err := server.New(cfg, log, loggerService)
		if err != nil {
			loggerService.Shutdown()
			return err
		}

		repos := repository.NewRepositories(srv)
		services := service.NewServices(srv, repos)
		handlers := handler.NewHandlers(srv, services)

		srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		var startErr error
		select {
		case startErr = <-serveErr:
			if startErr != nil {
				log.Error().Err(startErr).Msg("server stopped unexpectedly")
			}
		case <-ctx.Done():
			log.Info().Msg("shutting down server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		if startErr != nil {
			return startErr
		}

		log.Info().Msg("server exited properly")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
