package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Directory DirectoryConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type DirectoryConfig struct {
	// PageSize is the logical page size served by listing and search.
	PageSize int `env:"PAGE_SIZE, default=10"`
	// SearchBatchSize is the provider batch size used by full population
	// scans on the search path.
	SearchBatchSize int `env:"SEARCH_BATCH_SIZE, default=1000"`
	// CacheTTL bounds how long cursor chains and search result sets stay
	// live. Pages past the first become unreachable once it elapses.
	CacheTTL time.Duration `env:"CACHE_TTL, default=5m"`
	// CursorCacheBackend selects where cursors live: "memory" or "redis".
	CursorCacheBackend string `env:"CURSOR_CACHE_BACKEND, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_directory"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
