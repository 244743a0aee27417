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

	// BaseURL is the public asset host used to build default profile and
	// cover image URLs.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	BcryptCost        int           `env:"BCRYPT_COST,        default=10"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	RefreshTokenTTL   time.Duration `env:"REFRESH_TOKEN_TTL,  default=168h"`
	DependencyTimeout time.Duration `env:"DEPENDENCY_TIMEOUT, default=5s"`
	AuditWorkers      int           `env:"AUDIT_WORKERS,      default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
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
