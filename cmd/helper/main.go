// Command helper holds operator chores: password hashing, seeding, the
// exchange-record cleanup and lifting an auth throttle.
//
//	go run ./cmd/helper hash-password
//	go run ./cmd/helper seed [fixture.yaml]
//	go run ./cmd/helper cleanup
//	go run ./cmd/helper unthrottle <ip>
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"iam/internal/auth"
	"iam/internal/config"
	"iam/internal/db"
	"iam/internal/models"
	"iam/internal/ratelimit"
	"iam/internal/tasks"
	"iam/internal/utils/logger"
)

var log = logger.New("helper")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "hash-password":
		err = hashPassword()
	case "seed":
		path := ""
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		err = seed(path)
	case "cleanup":
		err = cleanup()
	case "unthrottle":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		err = unthrottle(os.Args[2])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: helper hash-password | seed [fixture.yaml] | cleanup | unthrottle <ip>")
}

func hashPassword() error {
	fmt.Print("Enter the password to hash: ")
	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && input == "" {
		return log.Error("❌ Failed to read password", err)
	}

	hashed, err := auth.NewBcryptHasher(0).Hash(strings.TrimSpace(input))
	if err != nil {
		return log.Error("❌ Hashing failed", err)
	}
	log.Success("✅ %s", hashed)
	return nil
}

func seed(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return log.Error("❌ Failed to load configuration", err)
	}
	fixture, err := models.LoadSeedFixture(path)
	if err != nil {
		return log.Error("❌ Failed to load seed fixture", err)
	}
	if err := db.Connect(cfg); err != nil {
		return log.Error("❌ Failed to connect to database", err)
	}
	defer db.Close()

	if err := models.Seed(context.Background(), db.GetDB(), fixture, auth.NewBcryptHasher(0).Hash); err != nil {
		return log.Error("❌ Seeding failed", err)
	}
	return nil
}

func cleanup() error {
	cfg, err := config.Load()
	if err != nil {
		return log.Error("❌ Failed to load configuration", err)
	}

	client := tasks.NewTaskClient(tasks.RedisOpt(cfg.Redis))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.EnqueueVerificationCleanup(ctx); err != nil {
		return log.Error("❌ Failed to enqueue cleanup", err)
	}
	log.Success("✅ Cleanup enqueued")
	return nil
}

// unthrottle clears the attempts recorded against ip by the auth throttle.
func unthrottle(ip string) error {
	cfg, err := config.Load()
	if err != nil {
		return log.Error("❌ Failed to load configuration", err)
	}
	client, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		return log.Error("❌ Failed to connect to redis", err)
	}
	defer client.Close()

	limiter := ratelimit.NewSlidingWindowLimiter(client, "auth", ratelimit.RateLimit{
		Window:      cfg.Throttle.Window,
		MaxRequests: cfg.Throttle.MaxAttempts,
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.OpTimeout)
	defer cancel()
	if err := limiter.Reset(ctx, ip); err != nil {
		return log.Error("❌ Failed to reset throttle for %s", err, ip)
	}
	log.Success("✅ Throttle cleared for %s", ip)
	return nil
}
