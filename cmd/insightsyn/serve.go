package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/insightsyn/internal/api"
	"github.com/spacesedan/insightsyn/internal/monitoring"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			healthy := &atomic.Bool{}
			healthy.Store(true)
			go monitoring.MonitorSummarizerHealth(ctx, a.summarizer, healthy)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           api.NewServer(a.service, healthy, cfg.NumThemes, slog.Default()).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				slog.Info("[Main] API listening", slog.String("addr", srv.Addr))
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
				slog.Info("[Main] Shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("[Main] Graceful shutdown did not complete",
					slog.Duration("timeout", shutdownTimeout),
					slog.String("error", err.Error()))
				return srv.Close()
			}
			slog.Info("[Main] Server stopped gracefully")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
