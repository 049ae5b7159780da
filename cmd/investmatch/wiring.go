package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/investmatch/internal/config"
	dbQdrant "github.com/kailas-cloud/investmatch/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/investmatch/internal/db/redis"
	"github.com/kailas-cloud/investmatch/internal/domain"
	"github.com/kailas-cloud/investmatch/internal/domain/candidate"
	"github.com/kailas-cloud/investmatch/internal/domain/index"
	logpkg "github.com/kailas-cloud/investmatch/internal/logger"
	"github.com/kailas-cloud/investmatch/internal/metrics"
	"github.com/kailas-cloud/investmatch/internal/observability"
	"github.com/kailas-cloud/investmatch/internal/repository/embcache"
	investorrepo "github.com/kailas-cloud/investmatch/internal/repository/investor"
	ollamaEmb "github.com/kailas-cloud/investmatch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/investmatch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/investmatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/investmatch/internal/usecase/health"
	"github.com/kailas-cloud/investmatch/internal/usecase/ingest"
	"github.com/kailas-cloud/investmatch/internal/usecase/recommend"
	"github.com/kailas-cloud/investmatch/internal/version"
)

// investorIndex is the similarity index as the composition root sees it.
type investorIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, e index.Entry) error
	Query(ctx context.Context, vector []float32, k int) ([]candidate.Candidate, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// app holds the wired services. close releases everything in reverse order.
type app struct {
	cfg       config.Config
	env       string
	logger    *zap.Logger
	recommend *recommend.Engine
	ingest    *ingest.Service
	health    *healthuc.Service
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// buildApp is the composition root shared by serve, ingest and recommend.
func buildApp(ctx context.Context, g *globalFlags) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := logpkg.NewLogger(g.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{cfg: cfg, env: g.env, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := &a.cfg
	domain.KeyPrefix = cfg.Storage.KeyPrefix

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterServiceMetrics()

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "investmatch",
		ServiceVersion: version.Version,
		Environment:    a.env,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			a.logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	})

	idx, db, redisStore, err := a.buildIndex(ctx)
	if err != nil {
		return err
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure investor index: %w", err)
	}
	a.logger.Info("Investor index ready", zap.String("driver", cfg.Database.Driver))

	cache, err := a.cacheStore(redisStore)
	if err != nil {
		return err
	}

	docEmbedder, err := a.buildEmbedder(cache)
	if err != nil {
		return err
	}
	var queryEmbedder domain.Embedder = docEmbedder
	if cfg.Embedding.QueryInstruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(docEmbedder, cfg.Embedding.QueryInstruction)
	}
	a.logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cache != nil),
	)

	a.ingest = ingest.New(docEmbedder, idx).
		WithMaxBatchSize(cfg.Ingest.MaxBatchSize).
		WithRequiredFields(cfg.Ingest.RequiredFields).
		WithIndexTimeout(cfg.QueryTimeout())
	a.recommend = recommend.New(queryEmbedder, idx).WithQueryTimeout(cfg.QueryTimeout())
	a.health = healthuc.New(db, docEmbedder)
	return nil
}

// buildIndex connects the configured backend. redisStore is nil for qdrant.
func (a *app) buildIndex(ctx context.Context) (investorIndex, pinger, *dbRedis.Store, error) {
	cfg := &a.cfg
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return nil, nil, nil, fmt.Errorf("database not ready: %w", err)
		}
		a.logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		repo := investorrepo.NewRedis(store, cfg.Embedding.Dimensions, investorrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
		return repo, store, store, nil

	case config.DriverQdrant:
		store, err := dbQdrant.NewStore(dbQdrant.Config{Addr: cfg.Database.Addrs[0]})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create qdrant store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return nil, nil, nil, fmt.Errorf("qdrant not ready: %w", err)
		}
		a.logger.Info("Connected to qdrant", zap.String("addr", cfg.Database.Addrs[0]))

		repo := investorrepo.NewQdrant(store, cfg.Index.Collection, cfg.Embedding.Dimensions)
		return repo, store, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// cacheStore returns the embedding cache keyspace, reusing the index store when it
// points at the same servers. Nil means caching is off.
func (a *app) cacheStore(indexStore *dbRedis.Store) (*dbRedis.Store, error) {
	cfg := &a.cfg
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if indexStore != nil && slices.Equal(cfg.Cache.Addrs, cfg.Database.Addrs) {
		return indexStore, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Cache.Addrs, Password: cfg.Cache.Password})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// buildEmbedder assembles provider -> cache -> instrumentation. The query-side
// instruction prefix wraps the result, so cache keys include the instruction.
func (a *app) buildEmbedder(cache *dbRedis.Store) (*embeddinguc.InstrumentedEmbedder, error) {
	cfg := &a.cfg

	var base domain.Embedder
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     a.logger,
		})
	case config.ProviderOllama:
		emb, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     a.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}
		base = emb
	default:
		return nil, errors.New("unknown embedding provider " + cfg.Embedding.Provider)
	}

	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, cfg.Embedding.Model, cfg.CacheTTL(), metrics.EmbeddingCacheTotal, a.logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.EmbeddingTimeout(), a.logger,
	), nil
}
