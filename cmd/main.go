// jobmate-listings-service
//
// Job listings board: catalog of postings, favorites, user profile skills
// and search/tag filtering. Web and mobile front ends and other services
// reach it over a REST API and a gRPC service offering:
//   - job CRUD with form validation
//   - favorites toggle and favorites list
//   - profile name/position and skill tags
//   - search + tag filtering (optionally narrowed by profile skills)
//
// On first start the catalog is seeded from CATALOG_URL or CATALOG_FILE.
// When REDIS_URL is set every change is published on the
// EVENT_LISTINGS_CHANGED channel, so subscribers can refresh their views.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/api"
	"jobmate/listings-service/internal/board"
	"jobmate/listings-service/internal/catalog"
	"jobmate/listings-service/internal/config"
	"jobmate/listings-service/internal/db"
	"jobmate/listings-service/internal/events"
	"jobmate/listings-service/internal/grpcserver"
	"jobmate/listings-service/internal/listing"
	"jobmate/listings-service/internal/logger"
	"jobmate/listings-service/internal/profile"
	"jobmate/listings-service/internal/scheduler"
	"jobmate/listings-service/internal/storage"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	log := logger.New(cfg.LogLevel).WithField("service", "listings-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Redis (optional: storage backend and event publishing) ───────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Info("connecting to Redis")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		log.Info("redis connected")
	}

	// ── Storage ──────────────────────────────────────────────────────────────
	kv, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()
	log.WithField("backend", cfg.StorageBackend).Info("storage ready")

	var pub events.Publisher = events.NewLog(log)
	if rdb != nil {
		pub = events.NewRedis(rdb)
	}

	// ── Board ────────────────────────────────────────────────────────────────
	b := board.New(listing.NewJobStore(kv, log), profile.NewStore(kv, log), pub, log)

	var src catalog.Source = catalog.NewFile(cfg.CatalogFile)
	if cfg.CatalogURL != "" {
		src = catalog.NewHTTP(cfg.CatalogURL, cfg.CatalogTimeout)
	}
	if err := b.Start(ctx, catalog.Seed(src)); err != nil {
		var te *catalog.TransportError
		if !errors.As(err, &te) {
			log.Fatalf("bootstrap: %v", err)
		}
		// Serve an empty catalog; the view carries the bootstrap error.
	}
	log.WithField("jobs", b.View().Listing.TotalCount).Info("catalog loaded")

	// ── Scheduler ────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.PruneIntervalMinutes > 0 {
		sched = scheduler.New(b, log, cfg.PruneIntervalMinutes)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewRouter(api.NewHandler(b, log), log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	var grpcSrv interface{ GracefulStop() }
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			log.Fatalf("gRPC listen: %v", err)
		}
		gs := grpcserver.NewGRPCServer(grpcserver.NewServer(b), log)
		grpcSrv = gs
		go func() {
			log.Infof("gRPC listening on :%s", cfg.GRPCPort)
			if err := gs.Serve(lis); err != nil {
				log.Errorf("gRPC server error: %v", err)
			}
		}()
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop()
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
	log.Info("stopped")
}

// openStore returns the key-value store selected by STORAGE_BACKEND and a
// function releasing its connections.
func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), func() {}, nil

	case config.BackendRedis:
		return storage.NewRedis(rdb, cfg.RedisKeyPrefix), func() {}, nil

	case config.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		kv, err := storage.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil

	default:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		kv, err := storage.NewSQLite(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return kv, func() { sqlDB.Close() }, nil
	}
}
