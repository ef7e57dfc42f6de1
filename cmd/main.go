package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iam/docs/swagger"
	"iam/internal/api"
	"iam/internal/auth"
	"iam/internal/config"
	"iam/internal/db"
	"iam/internal/events"
	"iam/internal/models"
	"iam/internal/ratelimit"
	"iam/internal/repository"
	"iam/internal/services"
	"iam/internal/tasks"
	"iam/internal/utils/logger"
)

// authEvents are forwarded to the broker when one is configured.
var authEvents = []string{
	auth.EventUserSignedUp,
	auth.EventUserSignedIn,
	auth.EventRoleSelected,
	auth.EventTokensRefreshed,
	auth.EventRefreshReuseDetected,
	auth.EventSignedOut,
}

func main() {
	logger := logger.New("iam")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	conn := db.GetDB()

	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	users := repository.NewUserRepository(conn)
	roles := repository.NewRoleRepository(conn)
	perms := repository.NewPermissionRepository(conn)
	menus := repository.NewMenuRepository(conn)
	verifications := repository.NewVerificationRepository(conn)

	hasher := auth.NewBcryptHasher(0)
	signer := auth.NewSigner(cfg.JWT)
	exchange := auth.NewExchangeIssuer(verifications)

	if cfg.Seed.Enabled {
		fixture, err := models.LoadSeedFixture(cfg.Seed.File)
		if err != nil {
			log.Fatalf("Failed to load seed fixture: %v", err)
		}
		if err := models.Seed(context.Background(), conn, fixture, hasher.Hash); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	if cfg.Broker.URL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logger.Warn("Event forwarding disabled: %v", err)
		} else {
			defer publisher.Close()
			events.Forward(events.Default(), publisher, authEvents...)
			logger.Success("Forwarding auth events to exchange %s", cfg.Broker.Exchange)
		}
	}

	authService := auth.NewService(auth.Dependencies{
		Users:       users,
		Roles:       roles,
		Hasher:      hasher,
		Signer:      signer,
		Store:       auth.NewRedisRefreshTokenStorage(redisClient, cfg.Redis.KeyPrefix, cfg.JWT.RefreshTokenTTL, cfg.Redis.OpTimeout),
		Exchange:    exchange,
		Events:      events.Default(),
		ExchangeTTL: cfg.JWT.ExchangeTokenTTL,
	})

	var avatars services.AvatarStore
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := services.NewS3Storage(context.Background(), cfg.Storage.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		if err := s3Storage.Verify(context.Background()); err != nil {
			log.Fatalf("Failed to verify S3 storage: %v", err)
		}
		// Register the URL signer
		models.RegisterAvatarURLSigner(s3Storage)
		avatars = s3Storage
	}

	// Initialize task server and scheduler
	var (
		taskServer    *tasks.Server
		taskScheduler *tasks.Scheduler
	)
	if cfg.Worker.Enabled {
		redisOpt := tasks.RedisOpt(cfg.Redis)
		taskServer = tasks.NewServer(redisOpt, cfg.Worker.Concurrency, tasks.NewTaskHandler(exchange), logger)
		if err := taskServer.Start(); err != nil {
			logger.Error("Task server error", err)
		}
		taskScheduler = tasks.NewScheduler(redisOpt, cfg.Worker.CleanupSpec, logger)
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}

	// Initialize API server
	apiServer, err := api.NewServer(cfg, api.Dependencies{
		Auth:        authService,
		Roles:       services.NewRoleService(roles, users),
		Permissions: services.NewPermissionService(perms, roles),
		Menus:       services.NewMenuService(menus, roles),
		Users:       services.NewUserService(users, avatars),
		Verifier:    signer,
		Resolver:    auth.NewPermissionResolver(perms),
		Limiter: ratelimit.NewSlidingWindowLimiter(redisClient, "auth", ratelimit.RateLimit{
			Window:      cfg.Throttle.Window,
			MaxRequests: cfg.Throttle.MaxAttempts,
		}),
		DB:      conn,
		Avatars: avatars != nil,
	})
	if err != nil {
		log.Fatalf("Failed to build API server: %v", err)
	}

	// Swagger documentation
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		swagger.SwaggerInfo.Host = u.Host
		swagger.SwaggerInfo.Schemes = []string{u.Scheme}
	}

	go func() {
		logger.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if taskScheduler != nil {
		taskScheduler.Stop()
	}
	if taskServer != nil {
		taskServer.Shutdown()
	}

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}
