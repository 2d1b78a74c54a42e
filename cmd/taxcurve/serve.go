package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgehrsitz/taxcurve/internal/api"
	"github.com/rgehrsitz/taxcurve/internal/bundle"
	"github.com/rgehrsitz/taxcurve/internal/logging"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/rgehrsitz/taxcurve/internal/store/memory"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve schedules and computed liabilities over HTTP",
	Long: "Starts the JSON API. With --bundle the schedules are loaded from a bundle file into memory " +
		"instead of the configured store.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		logger := newLogger(cmd, cfg)

		st, err := serveStore(cmd, logger)
		if err != nil {
			return err
		}
		if st == nil {
			if st, err = openStore(cfg, logger); err != nil {
				return err
			}
		}
		defer st.Close()

		handler := api.NewHandler(store.NewCache(st), cfg.Sampling)
		handler.SetLogger(logger)

		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.NewRouter(handler, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Infof("listening on %s", cfg.Server.Addr)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().String("bundle", "", "Serve the schedules in this bundle file from memory")
}

// serveStore returns a memory store loaded from --bundle, or nil when the
// flag is not set.
func serveStore(cmd *cobra.Command, logger logging.Logger) (store.Store, error) {
	path, _ := cmd.Flags().GetString("bundle")
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle %s: %w", path, err)
	}
	defer f.Close()

	st := memory.New()
	report, err := bundle.Import(cmd.Context(), f, st)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %d schedules from %s", len(report.Written), path)
	return st, nil
}
