package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ahacrm/pulse/internal/config"
	"github.com/ahacrm/pulse/internal/fetch"
	"github.com/ahacrm/pulse/internal/httpx"
	"github.com/ahacrm/pulse/internal/kpi"
	"github.com/ahacrm/pulse/internal/snapshot"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	snaps := snapshot.New(cfg.SnapshotPath, logger)
	client := fetch.NewClient(cfg.DataURL(), cfg.ServiceKey, cfg.FetchTimeout)
	fetcher := fetch.NewFetcher(client, snaps, cfg.CacheTTL, logger)
	engine := kpi.NewEngine(fetcher, logger)
	trigger := fetch.NewTrigger(cfg.TriggerURL, cfg.TriggerTimeout, logger)

	r := httpx.NewRouter(logger, fetcher, engine, trigger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
