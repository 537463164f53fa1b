// ABOUTME: This file constructs all application dependencies
// ABOUTME: Key-less adapters are skipped with a warning so the service degrades instead of failing startup
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrewvu270/MindForge-sub000/adapter"
	"github.com/andrewvu270/MindForge-sub000/cache"
	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/consumer"
	"github.com/andrewvu270/MindForge-sub000/handler"
	"github.com/andrewvu270/MindForge-sub000/metrics"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/orchestrator"
	"github.com/andrewvu270/MindForge-sub000/repository"
	"github.com/andrewvu270/MindForge-sub000/retry"
	"github.com/andrewvu270/MindForge-sub000/synthesis"
	"github.com/andrewvu270/MindForge-sub000/writer"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config         *config.Config
	DBPool         *pgxpool.Pool
	Cache          *cache.ContentCache
	Registry       *adapter.Registry
	Orchestrator   *orchestrator.Orchestrator
	ContentHandler *handler.ContentHandler
	LessonHandler  *handler.LessonHandler
	HealthHandler  *handler.HealthHandler
	RedisConsumer  *consumer.Consumer
	PromRegistry   *prometheus.Registry
	Logger         *slog.Logger
}

// BuildDependencies constructs all application dependencies.
// Returns a cleanup function that should be deferred.
func BuildDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dependencies, func(), error) {
	dbPool, err := repository.InitPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	contentCache := cache.NewContentCache(cfg.Cache.DefaultTTL, log)

	httpClient := adapter.NewClient(cfg.HTTP)
	registry := buildRegistry(httpClient, cfg.Adapters, log)

	retryCfg := retry.Config{
		MaxAttempts:   cfg.Retry.MaxAttempts,
		BaseDelay:     cfg.Retry.BaseDelay,
		MaxDelay:      cfg.Retry.MaxDelay,
		BackoffFactor: cfg.Retry.BackoffFactor,
		JitterFactor:  cfg.Retry.JitterFactor,
	}

	// The lesson archive doubles as fallback tier 3 and as the writer's
	// store. Without a database both are absent and the fetch path still
	// works; lesson generation returns an error instead.
	var archive orchestrator.ArchiveSearcher
	var lessonWriter handler.LessonWriter
	if dbPool != nil {
		lessonRepo := repository.NewLessonRepository(dbPool, log)
		archive = lessonRepo
		lessonWriter = writer.NewIdempotentWriter(lessonRepo, writerConfigFrom(cfg.Database), log)
	} else {
		log.Warn("no database configured, lesson archive and writer disabled")
		lessonWriter = unavailableWriter{}
	}

	orch := orchestrator.New(registry, contentCache, retryCfg, archive, m, log)

	synthClient := buildSynthesisClient(cfg.Synthesis, retryCfg, httpClient, log)

	contentHandler := handler.NewContentHandler(orch, log)
	lessonHandler := handler.NewLessonHandler(orch, synthClient, lessonWriter, log)

	var pinger handler.Pinger
	if dbPool != nil {
		pinger = dbPool
	}
	healthHandler := handler.NewHealthHandler(pinger, registry.Names())

	redisConsumer := buildRedisConsumer(ctx, cfg.Consumer, orch, log)

	cleanup := func() {
		if redisConsumer != nil {
			redisConsumer.Stop()
		}
		if dbPool != nil {
			dbPool.Close()
		}
	}

	return &Dependencies{
		Config:         cfg,
		DBPool:         dbPool,
		Cache:          contentCache,
		Registry:       registry,
		Orchestrator:   orch,
		ContentHandler: contentHandler,
		LessonHandler:  lessonHandler,
		HealthHandler:  healthHandler,
		RedisConsumer:  redisConsumer,
		PromRegistry:   promRegistry,
		Logger:         log,
	}, cleanup, nil
}

// buildRegistry wires every configured source adapter. Providers that need
// credentials are skipped with a warning when the key is absent, so a
// partially configured deployment still serves the keyless sources.
func buildRegistry(client *adapter.Client, cfg config.AdaptersConfig, log *slog.Logger) *adapter.Registry {
	registry := adapter.NewRegistry()

	registry.Register(adapter.NewWikipediaAdapter(client, cfg.Wikipedia, log))
	registry.Register(adapter.NewRSSFeedAdapter(client, cfg.RSSFeed, log))
	registry.Register(adapter.NewHackerNewsAdapter(client, cfg.HackerNews, log))
	registry.Register(adapter.NewRedditAdapter(client, cfg.Reddit, log))
	registry.Register(adapter.NewArxivAdapter(client, cfg.Arxiv, log))
	registry.Register(adapter.NewOpenLibraryAdapter(client, cfg.OpenLibrary, log))

	if a, err := adapter.NewNewsAPIAdapter(client, cfg.NewsAPI, log); err != nil {
		log.Warn("skipping newsapi adapter", "error", err)
	} else {
		registry.Register(a)
	}
	if a, err := adapter.NewYouTubeAdapter(client, cfg.YouTube, log); err != nil {
		log.Warn("skipping youtube adapter", "error", err)
	} else {
		registry.Register(a)
	}
	if a, err := adapter.NewAlphaVantageAdapter(client, cfg.AlphaVantage, log); err != nil {
		log.Warn("skipping alphavantage adapter", "error", err)
	} else {
		registry.Register(a)
	}

	log.Info("source adapters registered", "count", registry.Len(), "adapters", registry.Names())
	return registry
}

// buildSynthesisClient assembles the ordered backend list: local Ollama
// first, OpenAI-compatible remote as the fallback when a key is configured.
func buildSynthesisClient(cfg config.SynthesisConfig, retryCfg retry.Config, client *adapter.Client, log *slog.Logger) *synthesis.Client {
	backends := []synthesis.Backend{
		synthesis.NewOllamaBackend(cfg.OllamaHost, cfg.OllamaModel, client.HTTPClient()),
	}

	if openai, err := synthesis.NewOpenAIBackend(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel, client.HTTPClient()); err != nil {
		log.Warn("skipping openai synthesis backend", "error", err)
	} else {
		backends = append(backends, openai)
	}

	retrier := retry.NewRetrier(retryCfg, nil, log)
	return synthesis.NewClient(backends, retrier, cfg.Timeout, log)
}

func buildRedisConsumer(ctx context.Context, cfg config.ConsumerConfig, orch *orchestrator.Orchestrator, log *slog.Logger) *consumer.Consumer {
	eventHandler := consumer.NewContentEventHandler(orch, log)
	redisConsumer, err := consumer.NewConsumer(cfg, eventHandler, log)
	if err != nil {
		log.Error("failed to create redis streams consumer", "error", err)
		return nil
	}

	if err := redisConsumer.Start(ctx); err != nil {
		log.Error("failed to start redis streams consumer", "error", err)
		return nil
	}

	return redisConsumer
}

// writerConfigFrom carries the configured write retry bound into the writer,
// keeping the default backoff base.
func writerConfigFrom(cfg config.DatabaseConfig) writer.Config {
	wc := writer.DefaultConfig()
	if cfg.WriteMaxRetries > 0 {
		wc.MaxRetries = cfg.WriteMaxRetries
	}
	return wc
}

// unavailableWriter stands in when no database is configured.
type unavailableWriter struct{}

func (unavailableWriter) Store(ctx context.Context, _ *models.LessonRecord) error {
	return errors.New("lesson storage is not configured")
}
