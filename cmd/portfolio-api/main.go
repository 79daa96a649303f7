// portfolio-api — HTTP API индекса портфолио поверх манифеста.
//
// Индекс перестраивается при каждом сохранении манифеста.
//
// Использование:
//
//	./portfolio-api
//	./portfolio-api -config config.yaml -addr :9090
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ilkoid/pixelbros-assets/internal/api"
	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "Path to config.yaml")
		addr       = flag.String("addr", "", "Listen address (overrides server.addr)")
		noWatch    = flag.Bool("no-watch", false, "Do not rebuild index on manifest change")
	)
	flag.Parse()

	cfg, err := config.LoadLocal(config.FindConfigPath(*configPath))
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := utils.InitLogger(cfg.App.LogDir, cfg.App.LogPrefix+"-api"); err != nil {
		fmt.Fprintf(os.Stderr, "Logger Error: %v\n", err)
	}
	utils.SetDebug(cfg.App.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleanup := utils.SetupGracefulShutdown(cancel)
	defer cleanup()

	metrics := api.NewMetrics()
	svc, err := api.NewService(cfg.Assets.ManifestPath, metrics)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if !*noWatch {
		go func() {
			if err := svc.Watch(ctx, api.DefaultDebounce); err != nil {
				utils.Error("Manifest watcher stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(svc, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Portfolio API listening", "addr", cfg.Server.Addr, "manifest", cfg.Assets.ManifestPath)
		fmt.Printf("Listening on %s (manifest: %s)\n", cfg.Server.Addr, cfg.Assets.ManifestPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.Info("Portfolio API stopped")
	return nil
}
