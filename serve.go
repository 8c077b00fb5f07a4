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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zone-radar.klederson.com/internal/device"
	"zone-radar.klederson.com/internal/gateway"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the zone gateway between browsers or the TUI and a device",
		Long: `serve exposes GET and POST /api/zones. Writes are truncated to three
zones, clamped to the room and remembered, then forwarded to the device.
Reads fall back to the last known zones when the device is unreachable.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setupConsoleLogging(cfg.LogLevel)

			srv := gateway.NewServer(cfg.Device)
			log.Info().Str("device", cfg.Device).Msg("zone gateway configured")
			return listenAndServe(cfg.Listen, srv.Routes(), nil)
		},
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default :8080)")
	return cmd
}

func mockCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a simulated presence sensor",
		Long: `mock serves the device API (/zones, /updateZones and the /ws target
feed) with three targets wandering the room.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setupConsoleLogging(cfg.LogLevel)

			var opts []device.MockOption
			if cmd.Flags().Changed("seed") {
				opts = append(opts, device.WithSeed(seed))
			}
			mock := device.NewMock(opts...)
			return listenAndServe(cfg.Listen, mock.Handler(), mock.Run)
		},
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default :8080)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for target movement")
	return cmd
}

// listenAndServe runs handler until SIGINT or SIGTERM. background, when set,
// runs alongside the server and is stopped with it.
func listenAndServe(addr string, handler http.Handler, background func(context.Context)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	if background != nil {
		go background(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func setupConsoleLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(parseLevel(level))
}

// setupFileLogging sends logs to path; the terminal belongs to the UI.
func setupFileLogging(path, level string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(parseLevel(level))
	return f, nil
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
