package main

import (
	"context"
	"log/slog"

	"issue-classifier/config"
	app "issue-classifier/internal/application"
	"issue-classifier/internal/container"
	"issue-classifier/internal/domain/port"
	"issue-classifier/internal/infrastructure/gemini"
	"issue-classifier/internal/infrastructure/imaging"
	"issue-classifier/internal/infrastructure/onnx"
	"issue-classifier/internal/infrastructure/storage"
	"issue-classifier/internal/logging"
)

const inputSize = 224

// bootstrap loads configuration, sets up logging and builds the application container.
// The returned cleanup releases the model session and the cache connection.
func bootstrap(ctx context.Context) (*config.Config, *container.Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	log := logging.New("main")

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("cleanup failed", "error", err)
			}
		}
	}

	deps := app.Dependencies{
		Fetcher:          imaging.NewFetcher(cfg.FetchTimeout, cfg.MaxImageBytes, cfg.FetchRetries),
		Decoder:          imaging.NewDecoder(inputSize, cfg.MaxImagePixels),
		Thresholds:       cfg.Thresholds,
		InferenceTimeout: cfg.InferenceTimeout,
	}

	// A missing model keeps the service up; classification requests then fail
	// with a model-not-loaded error and /health reports it.
	classifier, err := onnx.LoadClassifier(onnx.Options{
		ModelDir:          cfg.ModelDir,
		SharedLibraryPath: cfg.SharedLibraryPath,
		InputSize:         inputSize,
	})
	if err != nil {
		log.Error("classifier not loaded", "model_dir", cfg.ModelDir, "error", err)
	} else {
		deps.Classifier = classifier
		closers = append(closers, classifier.Close)
		log.Info("classifier loaded", "model_dir", cfg.ModelDir, "classes", len(classifier.Labels()))
	}

	if d := gemini.New(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.DescribeTimeout,
		Retries: cfg.FetchRetries,
	}); d != nil {
		deps.Describer = d
	} else {
		log.Info("description generation disabled, GEMINI_API_KEY is not set")
	}

	deps.Cache = newVerdictCache(ctx, cfg, log, &closers)

	return cfg, container.New(storage.NewMemorySessionRepository(), deps), cleanup, nil
}

// newVerdictCache prefers Redis when configured and reachable, otherwise an in-process cache.
func newVerdictCache(ctx context.Context, cfg *config.Config, log *slog.Logger, closers *[]func() error) port.VerdictCache {
	if cfg.RedisAddr != "" {
		rc := storage.NewRedisVerdictCache(storage.RedisOptions{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		err := rc.Ping(ctx)
		if err == nil {
			*closers = append(*closers, rc.Close)
			log.Info("verdict cache: redis", "addr", cfg.RedisAddr)
			return rc
		}
		log.Warn("redis unavailable, falling back to memory cache", "addr", cfg.RedisAddr, "error", err)
		_ = rc.Close()
	}
	if cfg.CacheSize <= 0 {
		return nil
	}
	return storage.NewMemoryVerdictCache(cfg.CacheTTL, cfg.CacheSize)
}
