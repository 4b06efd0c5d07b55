package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	GraphQL   GraphQLConfig   `yaml:"graphql"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logger    LoggerConfig    `yaml:"logger"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8085"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type GraphQLConfig struct {
	Endpoint string        `yaml:"endpoint" env:"GRAPHQL_ENDPOINT" env-default:"http://localhost:5000/graphql"`
	Token    string        `yaml:"token" env:"GRAPHQL_TOKEN"`
	Timeout  time.Duration `yaml:"timeout" env:"GRAPHQL_TIMEOUT" env-default:"12s"`
}

type CatalogConfig struct {
	ListingWindow int `yaml:"listing_window" env:"CATALOG_LISTING_WINDOW" env-default:"200"`
	PerPage       int `yaml:"per_page" env:"CATALOG_PER_PAGE" env-default:"12"`
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
	URL     string        `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379"`
	DB      int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"10m"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"storefront_catalog"`
}

// LoadConfig reads path when it exists, then the environment. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			log.Printf("Warning: config file not found at %s, loading from environment only", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
