package main

import (
	"log"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/lumenlearn/semcache/internal/config"
	"github.com/lumenlearn/semcache/internal/domain"
	embeddingopenai "github.com/lumenlearn/semcache/internal/embedding/openai"
	generatoropenai "github.com/lumenlearn/semcache/internal/generator/openai"
	"github.com/lumenlearn/semcache/internal/generator/static"
	"github.com/lumenlearn/semcache/internal/http"
	"github.com/lumenlearn/semcache/internal/http/middleware"
	"github.com/lumenlearn/semcache/internal/index"
	"github.com/lumenlearn/semcache/internal/observability"
	"github.com/lumenlearn/semcache/internal/safety"
	"github.com/lumenlearn/semcache/internal/store"
)

// indexes groups the two vector indexes for dependency injection.
type indexes struct {
	dig.Out
	Basis   domain.VectorIndex `name:"basis"`
	Content domain.VectorIndex `name:"content"`
}

// indexesIn mirrors indexes for consumers.
type indexesIn struct {
	dig.In
	Basis   domain.VectorIndex `name:"basis"`
	Content domain.VectorIndex `name:"content"`
}

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Artifact store
	if err := container.Provide(func(cfg *config.StoreConfig) (domain.ArtifactStore, error) {
		if cfg.Backend == "memory" {
			return store.NewMemoryStore(), nil
		}
		return store.NewSQLiteStore(cfg.SQLitePath)
	}); err != nil {
		log.Fatalf("Failed to provide artifact store: %v", err)
	}

	// Redis client (only connected when the redis index backend is selected)
	if err := container.Provide(func(indexCfg *config.IndexConfig, redisCfg *config.RedisConfig) *goredis.Client {
		if indexCfg.Backend != index.BackendRedis {
			return nil
		}
		return goredis.NewClient(&goredis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
	}); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}

	// Vector indexes
	if err := container.Provide(func(cfg *config.IndexConfig, client *goredis.Client) (indexes, error) {
		basis, err := index.New(cfg.Backend, cfg.Dimension, client, "semcache:basis")
		if err != nil {
			return indexes{}, err
		}
		content, err := index.New(cfg.Backend, cfg.Dimension, client, "semcache:content")
		if err != nil {
			return indexes{}, err
		}
		return indexes{Basis: basis, Content: content}, nil
	}); err != nil {
		log.Fatalf("Failed to provide vector indexes: %v", err)
	}

	// Embedding generator (nil without an API key; the cache then runs
	// lexical-only)
	if err := container.Provide(func(cfg *embeddingopenai.Config) domain.EmbeddingGenerator {
		if cfg.APIKey == "" {
			return nil
		}
		embedder, err := embeddingopenai.NewGenerator(*cfg)
		if err != nil {
			return nil
		}
		return embedder
	}); err != nil {
		log.Fatalf("Failed to provide embedding generator: %v", err)
	}

	// Content generator
	if err := container.Provide(func(cfg *config.Config) (domain.Generator, error) {
		if cfg.GeneratorBackend == "static" || cfg.Generator.APIKey == "" {
			return static.NewGenerator(), nil
		}
		return generatoropenai.NewGenerator(cfg.Generator)
	}); err != nil {
		log.Fatalf("Failed to provide content generator: %v", err)
	}

	// Content safety
	if err := container.Provide(func() domain.ContentSafety {
		return safety.NewFilter()
	}); err != nil {
		log.Fatalf("Failed to provide content safety: %v", err)
	}

	// Cache orchestrator
	if err := container.Provide(func(
		artifacts domain.ArtifactStore,
		idx indexesIn,
		embedder domain.EmbeddingGenerator,
		generator domain.Generator,
		contentSafety domain.ContentSafety,
		cacheCfg *config.CacheConfig,
	) *domain.CacheOrchestrator {
		policy := domain.DefaultPolicy()
		policy.RequestThreshold = cacheCfg.SimilarityThreshold
		policy.ShortTopicThreshold = cacheCfg.ShortTopicThreshold
		policy.ScanRelaxation = cacheCfg.ScanRelaxation
		policy.ContentDedupThreshold = cacheCfg.ContentDedupThreshold
		policy.MinMeaningfulTokens = cacheCfg.MinMeaningfulTokens
		policy.CandidateK = cacheCfg.CandidateLimit
		policy.ScanLimit = cacheCfg.ScanLimit

		return domain.NewCacheOrchestrator(
			artifacts, idx.Basis, idx.Content, embedder, generator, contentSafety, policy)
	}); err != nil {
		log.Fatalf("Failed to provide cache orchestrator: %v", err)
	}

	// Middleware
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
