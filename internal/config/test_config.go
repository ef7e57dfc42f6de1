package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8081,
			AllowOrigins:   []string{"*"},
			RequestTimeout: 5 * time.Second,
			BodyLimit:      "1M",
			RateLimit:      1000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "iam_test",
			User:     "test_user",
			Password: "test_password",
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret:           "test-secret-with-enough-entropy",
			Audience:         "iam-test",
			Issuer:           "iam-test-issuer",
			AccessTokenTTL:   15 * time.Minute,
			RefreshTokenTTL:  time.Hour,
			ExchangeTokenTTL: time.Hour,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Password:  "",
			DB:        0,
			OpTimeout: time.Second,
			KeyPrefix: "iam:test:refresh:",
		},
		Worker: WorkerConfig{
			Concurrency: 1,
			CleanupSpec: "@every 1m",
		},
		Storage: StorageConfig{
			Provider: "none",
		},
		Throttle: ThrottleConfig{
			Window:      time.Minute,
			MaxAttempts: 100,
		},
	}
}
