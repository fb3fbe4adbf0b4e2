package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arthurelgindell/storyreel/internal/adapter/repo"
	"github.com/arthurelgindell/storyreel/internal/http/handlers"
	"github.com/arthurelgindell/storyreel/internal/http/httpapi"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/infra/geoip"
	"github.com/arthurelgindell/storyreel/internal/production"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: storage init failed")
	}

	gen := videogen.NewClient(videogen.Options{BaseURL: cfg.VideoGenBaseURL})
	storyboards := repo.NewStoryboardRepository(runner)
	jobs := repo.NewJobRepository(runner)
	matches := repo.NewMatchRepository(runner)

	// The API only queues jobs; cmd/worker carries the full pipeline.
	producer := production.NewProducer(production.Options{
		Storyboards: storyboards,
		Jobs:        jobs,
		Matches:     matches,
		Store:       store,
		Gen:         gen,
		Logger:      logger,
	})

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip database unavailable")
	}

	app := &handlers.App{
		Storyboards: storyboards,
		Jobs:        jobs,
		Matches:     matches,
		Producer:    producer,
		Store:       store,
		Gen:         gen,
		Logger:      logger,
	}
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		AllowedOrigins: cfg.CORSOrigins,
		GeoIP:          resolver,
		RateLimit:      cfg.RateLimitPerMin,
		Logger:         logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
