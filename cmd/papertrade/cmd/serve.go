package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/internal/logger"
	"github.com/rustyeddy/papertrade/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the account over HTTP and WebSocket",
	Long: `Start the JSON API for the configured account.

The catalog is refreshed at startup and then on the catalog.refresh
schedule. When the listing backend is down, prices stay at the last good
snapshot and POST /api/stocks/refresh answers 503.

Example:
  papertrade serve -c papertrade.yaml --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.restore(ctx); err != nil {
		return err
	}
	_ = a.refresh(ctx)

	if cfg.Catalog.Refresh != "" {
		timeout, _ := cfg.Catalog.ParseTimeout()
		refresher, err := catalog.NewRefresher(a.store, cfg.Catalog.Refresh, timeout, log)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	srv := server.New(server.Config{
		Port:    cfg.Server.Port,
		Log:     log,
		Engine:  a.engine,
		Catalog: a.store,
	})

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	return nil
}
