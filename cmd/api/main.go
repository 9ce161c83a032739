package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/sessionworks/authcore/docs" // Swagger docs (generated)
	"github.com/sessionworks/authcore/internal/auth"
	"github.com/sessionworks/authcore/internal/config"
	"github.com/sessionworks/authcore/internal/database"
	"github.com/sessionworks/authcore/internal/email"
	httpServer "github.com/sessionworks/authcore/internal/http"
	"github.com/sessionworks/authcore/internal/logging"
	"github.com/sessionworks/authcore/internal/user"
)

// @title           Authcore API
// @version         1.0
// @description     Credential and session management service.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
	)

	store, cleanup, err := initStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize user store: %w", err)
	}
	defer cleanup()

	hasher := auth.NewArgon2Hasher()
	tokens := auth.NewRandomTokenSource()

	// Reset emails are best-effort and only wired when SMTP is configured.
	var notifier auth.Notifier
	if cfg.Email.SMTPHost != "" {
		notifier = email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FrontendURL,
		)
	}

	authService := auth.NewService(store, hasher, tokens, notifier, logger)
	authHandler := auth.NewHandler(authService, logger, !cfg.Server.IsDevelopment())

	router := httpServer.NewRouter(cfg, authHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initStore builds the configured user store backend and returns it with a
// cleanup func closing the underlying connection.
func initStore(cfg *config.Config) (user.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := initDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return user.NewPostgresStore(db), func() { db.Close() }, nil

	case config.StoreRedis:
		client, err := initRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return user.NewRedisStore(client), func() { client.Close() }, nil

	case config.StoreMemory:
		return user.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db := database.NewBunDB(sqlDB)

	if err := database.CreateSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
