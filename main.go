package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sensor-dashboard/config"
	"sensor-dashboard/handlers"
	"sensor-dashboard/services"
	"sensor-dashboard/utils"
)

func initRedis(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled() {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		utils.Warn("redis not available at %s: %v", cfg.RedisAddr(), err)
		redisClient.Close()
		return nil
	}

	utils.Info("redis connected at %s", cfg.RedisAddr())
	return redisClient
}

func initArchive(cfg *config.Config) *services.ArchiveService {
	if !cfg.MinioEnabled() {
		return nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		utils.Warn("minio client: %v", err)
		return nil
	}

	store := services.NewMinioObjectStore(client, cfg.MinioBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		utils.Warn("minio not available at %s: %v", cfg.MinioEndpoint, err)
		return nil
	}

	utils.Info("archiving readings to bucket %s", cfg.MinioBucket)
	return services.NewArchiveService(store)
}

func initPostgres(cfg *config.Config) (*sql.DB, *services.PostgresSink) {
	if !cfg.PostgresEnabled() {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		utils.Warn("postgres open: %v", err)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sink := services.NewPostgresSink(db)
	if err := db.PingContext(ctx); err != nil {
		utils.Warn("postgres not available: %v", err)
		db.Close()
		return nil, nil
	}
	if err := sink.EnsureSchema(ctx); err != nil {
		utils.Warn("%v", err)
		db.Close()
		return nil, nil
	}

	utils.Info("postgres sink ready")
	return db, sink
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("%v", err)
	}
	utils.SetLevel(cfg.LogLevel)

	buffer, err := services.NewRollingBuffer(cfg.BufferCapacity)
	if err != nil {
		var cfgErr *services.ConfigError
		if errors.As(err, &cfgErr) {
			utils.Fatal("invalid BUFFER_CAPACITY: %v", cfgErr)
		}
		utils.Fatal("%v", err)
	}

	generator, fields, err := services.NewSourceGenerator(cfg.Source, cfg.SourceURL, cfg.Fields, cfg.RandSeed)
	if err != nil {
		utils.Fatal("reading source %s: %v", cfg.Source, err)
	}

	// Optional backends
	redisClient := initRedis(cfg)
	archive := initArchive(cfg)
	db, pgSink := initPostgres(cfg)

	var sinks []services.ReadingSink
	if archive != nil {
		sinks = append(sinks, archive)
	}
	if pgSink != nil {
		sinks = append(sinks, pgSink)
	}

	var recent handlers.RecentValues
	if pgSink != nil {
		recent = pgSink
	}

	var history *services.HistoryCache
	var pinger handlers.Pinger
	if redisClient != nil {
		history = services.NewHistoryCache(redisClient, cfg.HistoryTTL)
		pinger = redisClient
	}

	sampler, err := services.NewSampler(services.SamplerConfig{
		Buffer:     buffer,
		Generator:  generator,
		Interval:   cfg.Interval,
		TrendField: cfg.TrendField,
		Sinks:      sinks,
		History:    history,
	})
	if err != nil {
		utils.Fatal("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n, err := sampler.Restore(ctx); err != nil {
		utils.Warn("history restore: %v", err)
	} else if n > 0 {
		utils.Info("restored %d readings from history", n)
	}

	hub := handlers.NewLiveHub()
	go hub.Run(ctx)
	sampler.Subscribe(hub.Broadcast)

	r := handlers.NewRouter(handlers.Routes{
		Readings: handlers.NewReadingsHandler(buffer, sampler),
		Trend:    handlers.NewTrendHandler(buffer),
		Charts:   handlers.NewChartHandler(buffer, fields),
		Archive:  handlers.NewArchiveHandler(archive),
		History:  handlers.NewHistoryHandler(recent),
		Health:   handlers.NewHealthHandler(pinger, cfg.Environment),
		Live:     hub,
	})

	sampler.Start(ctx)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.ListenAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		utils.Info("server starting on %s (source=%s, capacity=%d, interval=%s)",
			cfg.ListenAddr, cfg.Source, cfg.BufferCapacity, cfg.Interval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("failed to start server: %v", err)
		}
	}()

	<-quit
	utils.Info("shutting down server...")

	sampler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if db != nil {
		db.Close()
	}

	utils.Info("server stopped")
}
