package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/smendez/searchgram/internal/cache"
	"github.com/smendez/searchgram/internal/config"
	"github.com/smendez/searchgram/internal/httpx"
	"github.com/smendez/searchgram/internal/ingest"
	"github.com/smendez/searchgram/internal/insights"
	"github.com/smendez/searchgram/internal/ngram"
	"github.com/smendez/searchgram/internal/obs"
	"github.com/smendez/searchgram/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	brands, err := config.LoadBrands(cfg.BrandsFile)
	if err != nil {
		logger.Error("brand vocabulary", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if len(brands) == 0 {
		logger.Warn("no brand vocabulary configured, classification and negative-keyword safety run without a brand allowlist")
	}

	m := obs.New()
	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	ca := cache.New(cache.TTLs{"ads": cfg.CacheTTL, "windsor": cfg.CacheTTL}, cfg.CacheTTL)
	eng := ngram.NewEngine(brands)
	etl := ingest.NewETL(cl, st, ca, logger, cfg, m)
	svc := insights.NewService(st, eng, cfg, m)

	r := httpx.NewRouter(logger, etl, svc, m.Registry)

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
