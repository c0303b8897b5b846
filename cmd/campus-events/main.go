package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/KamalSai3/KS-Events/internal/analytics"
	"github.com/KamalSai3/KS-Events/internal/api"
	"github.com/KamalSai3/KS-Events/internal/auth"
	"github.com/KamalSai3/KS-Events/internal/config"
	"github.com/KamalSai3/KS-Events/internal/database/migrations"
	"github.com/KamalSai3/KS-Events/internal/logger"
	"github.com/KamalSai3/KS-Events/internal/registration"
	regkafka "github.com/KamalSai3/KS-Events/internal/registration/kafka"
	"github.com/KamalSai3/KS-Events/internal/registration/redislock"
	"github.com/KamalSai3/KS-Events/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// --- Postgres ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", "Failed to open Postgres: "+err.Error())
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", "Failed to connect to Postgres: "+err.Error())
	}
	log.Info("DATABASE", "Postgres connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, cfg.Database.MigrationsDir)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", "Migrations failed: "+err.Error())
		}
		log.Info("DATABASE", "Migrations applied")
	}

	entityStore := store.New(bunDB)

	// --- Redis (optional registration pre-gate) ---
	var lock registration.RegistrationLock
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("REDIS", "Failed to connect to Redis: "+err.Error())
		}
		log.Info("REDIS", "Redis connection successful")
		lock = redislock.New(redisClient, cfg.Redis.LockTTL)
	}

	// --- Kafka (optional lifecycle event stream) ---
	var publisher registration.Publisher
	if cfg.Kafka.Enabled {
		producer := regkafka.NewProducer(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topics.RegistrationCreated,
			cfg.Kafka.Topics.RegistrationCancelled,
			log,
		)
		producer.MockMode = cfg.Kafka.MockMode
		defer producer.Close()
		publisher = producer
	}

	// --- Services ---
	regService := registration.NewService(entityStore, lock, publisher)
	analyticsService := analytics.NewService(entityStore)
	verifier := auth.NewVerifier(entityStore)

	handler := api.NewHandler(entityStore, regService, analyticsService, verifier, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	handler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "Campus events service on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "HTTP error: "+err.Error())
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", "Forced shutdown: "+err.Error())
	}
	log.Info("SERVER", "Server exited gracefully")
}
