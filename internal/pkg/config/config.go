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

	// ScanWorkers sizes the background dispatcher pool.
	ScanWorkers int `env:"SCAN_WORKERS, default=8"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Capture CaptureConfig
	Search  SearchConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
	Cache   CacheConfig
	Assets  AssetsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=scan_engine"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type CaptureConfig struct {
	BaseURL string `env:"CAPTURE_BASE_URL, default=https://api.steel.dev"`
	APIKey  string `env:"CAPTURE_API_KEY"`
}

type SearchConfig struct {
	APIKey string `env:"SERPAPI_KEY"`
}

type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY"`
	Model  string `env:"OPENAI_MODEL, default=gpt-4o"`
}

type StorageConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=scan-artifacts"`
	Region    string `env:"MINIO_REGION,     default=us-east-1"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
}

type CacheConfig struct {
	// ScreenshotTTL bounds how long a captured screenshot is reused.
	ScreenshotTTL time.Duration `env:"SCREENSHOT_CACHE_TTL, default=1h"`
}

type AssetsConfig struct {
	// PresignExpiry bounds how long a signed asset URL stays valid.
	PresignExpiry time.Duration `env:"ASSET_URL_EXPIRY, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
