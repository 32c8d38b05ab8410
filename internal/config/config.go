package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// placeholderKeyFragment marks keys copied verbatim from example env files.
const placeholderKeyFragment = "your_"

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"0"`
	ChatModels          string        `envconfig:"CHAT_MODELS" default:"gpt-4o-mini,gpt-4.1-mini"`
	GenerationTimeout   time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
	ProbeTimeout        time.Duration `envconfig:"PROBE_TIMEOUT" default:"10s"`
	QueryCacheSize      int           `envconfig:"QUERY_CACHE_SIZE" default:"256"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"150"`

	BackfillInterval time.Duration `envconfig:"BACKFILL_INTERVAL" default:"1m"`

	ScrapeTimeout time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"15s"`
	ScrapeRate    float64       `envconfig:"SCRAPE_RATE" default:"1"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"inbox-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Empty disables bearer auth on /api.
	APIToken string `envconfig:"API_TOKEN"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("INBOX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// envconfig's required only checks presence; an empty URL would fall back to libpq defaults.
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("failed to process config: DATABASE_URL must not be empty")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("failed to process config: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// HasProvider reports whether a real provider key is configured. When false
// the server runs in mock mode for the whole process lifetime.
func (c *Config) HasProvider() bool {
	key := strings.TrimSpace(c.OpenAIAPIKey)
	return key != "" && !strings.Contains(key, placeholderKeyFragment)
}

// ChatModelList returns the ordered chat model candidates.
func (c *Config) ChatModelList() []string {
	var models []string
	for _, m := range strings.Split(c.ChatModels, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models
}
