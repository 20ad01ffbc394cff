package cli

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

	"section-cms/pkg/config"
	"section-cms/pkg/handlers"
	"section-cms/pkg/log"
	"section-cms/pkg/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the CMS web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.WithComponent("server")

	cat, err := services.GetCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info().Int("families", cat.Len()).Msg("section catalog ready")

	if config.CatalogWatch {
		go func() {
			if err := services.WatchCatalog(ctx); err != nil {
				logger.Error().Err(err).Msg("catalog watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           handlers.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
