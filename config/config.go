package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env        string   `env:"ENV" envDefault:"dev"`
	ServerPort int      `env:"SERVER_PORT" envDefault:"8000"`
	JWTSecret  string   `env:"JWT_SECRET"`
	CORSOrigin []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// RevocationSweepInterval enables periodic pruning of revoked token ids
	// whose tokens have expired. Zero disables the sweep.
	RevocationSweepInterval time.Duration `env:"REVOCATION_SWEEP_INTERVAL" envDefault:"0s"`

	Database DatabaseConfig
	Log      LogConfig
	MQ       MQConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"postgres"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        int    `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"items"`
	Password    string `env:"DB_PASSWORD" envDefault:"password"`
	DBName      string `env:"DB_NAME" envDefault:"items_db"`
	UseSSL      bool   `env:"DB_USE_SSL" envDefault:"false"`
	Path        string `env:"DB_PATH" envDefault:"items.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type LogConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode bool   `env:"LOG_DEV" envDefault:"false"`
}

type MQConfig struct {
	Backend     string `env:"MQ_BACKEND"`
	ItemChannel string `env:"MQ_ITEM_CHANNEL" envDefault:"item-events"`
	RabbitMQ    RabbitMQConfig
	PubSub      PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	PrefetchCount   int    `env:"RABBITMQ_PREFETCH" envDefault:"10"`
	QueueDurable    bool   `env:"RABBITMQ_DURABLE" envDefault:"true"`
	QueueAutoDelete bool   `env:"RABBITMQ_AUTO_DELETE" envDefault:"false"`
}

type PubSubConfig struct {
	ProjectID          string `env:"PUBSUB_PROJECT_ID"`
	CredentialsFile    string `env:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"PUBSUB_SUBSCRIPTION_SUFFIX" envDefault:"-sub"`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND"`
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"items"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

// LoadConfig reads the process environment, loading a .env file first when
// ENV=dev.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}
