package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arthurelgindell/storyreel/internal/adapter/repo"
	"github.com/arthurelgindell/storyreel/internal/assembly"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/matching"
	"github.com/arthurelgindell/storyreel/internal/production"
	"github.com/arthurelgindell/storyreel/internal/providers/embedding"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/providers/vectorsearch"
	"github.com/arthurelgindell/storyreel/internal/render"
	"github.com/arthurelgindell/storyreel/internal/scoring"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: storage init failed")
	}

	embedder := embedding.NewClient(embedding.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.EmbeddingModel,
	})
	searcher := vectorsearch.NewClient(vectorsearch.Options{
		BaseURL:    cfg.SearchBaseURL,
		Collection: cfg.SearchCollection,
		APIKey:     cfg.SearchAPIKey,
	})
	gen := videogen.NewClient(videogen.Options{BaseURL: cfg.VideoGenBaseURL})

	storyboards := repo.NewStoryboardRepository(runner)
	jobs := repo.NewJobRepository(runner)
	matches := repo.NewMatchRepository(runner)
	assets := repo.NewAssetRepository(runner)

	engine := scoring.NewEngine(scoring.DefaultConfig())
	source := matching.NewCandidateSource(embedder, searcher)

	newResolver := func(onGenerate func(sceneID string)) production.Resolver {
		orch := matching.NewOrchestrator(matching.OrchestratorOptions{
			Source:   source,
			Engine:   engine,
			Gen:      gen,
			Store:    store,
			Embedder: embedder,
			Searcher: searcher,
			Assets:   assets,
			Logger:   logger,
		})
		orch.OnGenerate = onGenerate
		return orch
	}

	producer := production.NewProducer(production.Options{
		Storyboards: storyboards,
		Jobs:        jobs,
		Matches:     matches,
		NewResolver: newResolver,
		Planner:     assembly.NewPlanner(),
		Renderer:    render.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, logger),
		Store:       store,
		Gen:         gen,
		Logger:      logger,
	})

	runnerLoop := production.NewRunner(jobs, producer, cfg.WorkerCount, logger)
	logger.Info().Int("workers", cfg.WorkerCount).Msg("worker: started")
	if err := runnerLoop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
