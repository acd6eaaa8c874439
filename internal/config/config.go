package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Kafka   KafkaConfig
	Retry   RetryConfig
}

type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxUploadSize   int64         `env:"SERVER_MAX_UPLOAD_SIZE" env-default:"33554432"`
}

type StorageConfig struct {
	Endpoint      string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey     string `env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey     string `env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	UseSSL        bool   `env:"MINIO_USE_SSL" env-default:"false"`
	PublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL" env-default:"http://localhost:9000"`
	DefaultBucket string `env:"MINIO_DEFAULT_BUCKET" env-default:"images"`
}

type KafkaConfig struct {
	Enabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	Brokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	ResultsTopic string   `env:"KAFKA_RESULTS_TOPIC" env-default:"derivatives-generated"`
}

type RetryConfig struct {
	Attempts int           `env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `env:"RETRY_DELAY" env-default:"200ms"`
	Backoff  float64       `env:"RETRY_BACKOFF" env-default:"2"`
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
