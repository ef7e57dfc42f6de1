package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Storage  StorageConfig
	Broker   BrokerConfig
	Seed     SeedConfig
	Throttle ThrottleConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	PublicURL      string
	AllowOrigins   []string
	RequestTimeout time.Duration
	BodyLimit      string
	// RateLimit is the global per-process request rate (requests/second).
	RateLimit float64
	AdminPanel bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

// DSN returns URL when set, otherwise a key/value DSN built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type JWTConfig struct {
	Secret           string
	Audience         string
	Issuer           string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ExchangeTokenTTL time.Duration
}

type RedisConfig struct {
	Addr         string
	Password     string
	Username     string
	DB           int
	OpTimeout    time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

type WorkerConfig struct {
	Enabled     bool
	Concurrency int
	CleanupSpec string
}

type StorageConfig struct {
	Provider string // none or s3
	S3       S3Config
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME" required:"true"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION" required:"true"`
	AccessKey  string `env:"S3_ACCESS_KEY" required:"true"`
	SecretKey  string `env:"S3_SECRET_KEY" required:"true"`
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

type SeedConfig struct {
	Enabled bool
	File    string
}

type ThrottleConfig struct {
	Window      time.Duration
	MaxAttempts int
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
			AllowOrigins:   getEnvAsSlice("SERVER_ALLOW_ORIGINS", []string{"*"}),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			BodyLimit:      getEnv("SERVER_BODY_LIMIT", "2M"),
			RateLimit:      getEnvAsFloat("SERVER_RATE_LIMIT", 20),
			AdminPanel:     getEnvAsBool("SERVER_ADMIN_PANEL", true),
		},
		Database: DatabaseConfig{
			URL:             getEnv("POSTGRES_URL", ""),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnvAsInt("POSTGRES_PORT", 5432),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", ""),
			Name:            getEnv("POSTGRES_DB", "iam"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", time.Hour),
			LogQueries:      getEnvAsBool("POSTGRES_LOG_QUERIES", false),
		},
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", ""),
			Audience:         getEnv("JWT_AUDIENCE", "iam-clients"),
			Issuer:           getEnv("JWT_ISSUER", "iam"),
			AccessTokenTTL:   getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:  getEnvAsDuration("JWT_REFRESH_TOKEN_TTL", 24*time.Hour),
			ExchangeTokenTTL: getEnvAsDuration("EXCHANGE_TOKEN_TTL", time.Hour),
		},
		Redis: RedisConfig{
			Addr:         fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Username:     getEnv("REDIS_USERNAME", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			OpTimeout:    getEnvAsDuration("REDIS_OP_TIMEOUT", 2*time.Second),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "iam:refresh:"),
		},
		Worker: WorkerConfig{
			Enabled:     getEnvAsBool("WORKER_ENABLED", true),
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 5),
			CleanupSpec: getEnv("WORKER_CLEANUP_SPEC", "*/15 * * * *"),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "none"),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Broker: BrokerConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "iam.events"),
		},
		Seed: SeedConfig{
			Enabled: getEnvAsBool("SEED_ENABLED", false),
			File:    getEnv("SEED_FILE", ""),
		},
		Throttle: ThrottleConfig{
			Window:      getEnvAsDuration("THROTTLE_WINDOW", time.Minute),
			MaxAttempts: getEnvAsInt("THROTTLE_MAX_ATTEMPTS", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []error
	if c.JWT.Secret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.AccessTokenTTL <= 0 {
		problems = append(problems, errors.New("JWT_ACCESS_TOKEN_TTL must be positive"))
	}
	if c.JWT.RefreshTokenTTL <= 0 {
		problems = append(problems, errors.New("JWT_REFRESH_TOKEN_TTL must be positive"))
	}
	if c.JWT.ExchangeTokenTTL <= 0 {
		problems = append(problems, errors.New("EXCHANGE_TOKEN_TTL must be positive"))
	}
	if c.Redis.OpTimeout <= 0 {
		problems = append(problems, errors.New("REDIS_OP_TIMEOUT must be positive"))
	}
	if c.Storage.Provider == "s3" && c.Storage.S3.BucketName == "" {
		problems = append(problems, errors.New("S3_BUCKET_NAME is required when STORAGE_PROVIDER=s3"))
	}
	return errors.Join(problems...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
