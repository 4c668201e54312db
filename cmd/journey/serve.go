package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/journey/internal/cli"
	httpAdapter "github.com/aretw0/journey/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes the journey engine as a JSON API over HTTP, with Prometheus
metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.HTTPPort
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		b, err := cli.NewBackend(cmd.Context(), cfg, logger, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer b.Close()

		handler := httpAdapter.NewHandler(b.Engine,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(b.Metrics.Handler()),
		)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting journey server", "addr", srv.Addr, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-cmd.Context().Done():
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("kill server: %w", err)
				}
			}
			logger.Info("journey server stopped")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on (env JOURNEY_HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}
