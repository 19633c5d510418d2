package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	embeddingopenai "github.com/lumenlearn/semcache/internal/embedding/openai"
	generatoropenai "github.com/lumenlearn/semcache/internal/generator/openai"
)

// Config represents the service configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Cache     CacheConfig
	Store     StoreConfig
	Index     IndexConfig
	Redis     RedisConfig
	Embedding embeddingopenai.Config
	Generator generatoropenai.Config

	// GeneratorBackend selects the content generator: "openai" or "static".
	GeneratorBackend string `env:"GENERATOR_BACKEND" envDefault:"openai"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"120"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// CacheConfig contains cache matching policy settings.
type CacheConfig struct {
	SimilarityThreshold      float64 `env:"CACHE_SIMILARITY_THRESHOLD"       envDefault:"0.88"`
	ShortTopicThreshold      float64 `env:"CACHE_SHORT_TOPIC_THRESHOLD"      envDefault:"0.97"`
	ScanRelaxation           float64 `env:"CACHE_SCAN_RELAXATION"            envDefault:"0.05"`
	ContentDedupThreshold    float64 `env:"CACHE_CONTENT_DEDUP_THRESHOLD"    envDefault:"0.93"`
	MinMeaningfulTokens      int     `env:"CACHE_MIN_MEANINGFUL_TOKENS"      envDefault:"3"`
	CandidateLimit           int     `env:"CACHE_CANDIDATE_LIMIT"            envDefault:"10"`
	ScanLimit                int     `env:"CACHE_SCAN_LIMIT"                 envDefault:"500"`
}

// StoreConfig contains artifact store settings.
type StoreConfig struct {
	// Backend selects the artifact store: "sqlite" or "memory".
	Backend    string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath string `env:"STORE_SQLITE_PATH" envDefault:"data/artifacts.db"`
}

// IndexConfig contains vector index settings.
type IndexConfig struct {
	// Backend selects the vector index: "redis" or "memory".
	Backend         string `env:"INDEX_BACKEND"           envDefault:"memory"`
	Dimension       int    `env:"INDEX_DIMENSION"         envDefault:"1536"`
	BasisSavePath   string `env:"INDEX_BASIS_SAVE_PATH"   envDefault:"data/basis.idx"`
	ContentSavePath string `env:"INDEX_CONTENT_SAVE_PATH" envDefault:"data/content.idx"`
}

// RedisConfig contains Redis connection settings for the vector index.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*CacheConfig
	*StoreConfig
	*IndexConfig
	*RedisConfig
	*embeddingopenai.Config
	Generator *generatoropenai.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Cache,
		&cfg.Store,
		&cfg.Index,
		&cfg.Redis,
		&cfg.Embedding,
		&cfg.Generator,
	}
}
