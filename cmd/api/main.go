package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/api"
	"github.com/sitelens/scan-engine/internal/core/service"
	"github.com/sitelens/scan-engine/internal/infrastructure/ai"
	"github.com/sitelens/scan-engine/internal/infrastructure/auth"
	"github.com/sitelens/scan-engine/internal/infrastructure/capture"
	mongodb "github.com/sitelens/scan-engine/internal/infrastructure/db/mongo"
	redisdb "github.com/sitelens/scan-engine/internal/infrastructure/db/redis"
	"github.com/sitelens/scan-engine/internal/infrastructure/hub"
	"github.com/sitelens/scan-engine/internal/infrastructure/queue"
	"github.com/sitelens/scan-engine/internal/infrastructure/search"
	"github.com/sitelens/scan-engine/internal/infrastructure/storage"
	"github.com/sitelens/scan-engine/internal/pkg/config"
	"github.com/sitelens/scan-engine/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Record store ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	websiteRepo := mongodb.NewWebsiteRepository(db)
	scanRepo := mongodb.NewScanRepository(db)
	if err := websiteRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("website index creation failed")
	}
	if err := scanRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("scan index creation failed")
	}

	// --- Redis: screenshot cache + hub transport ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	screenshotCache := redisdb.NewScreenshotCache(rdb, cfg.Cache.ScreenshotTTL, log)
	if removed, err := screenshotCache.Sweep(ctx); err != nil {
		log.Warn().Err(err).Msg("startup cache sweep failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("swept expired screenshots")
	}
	go sweepPeriodically(ctx, screenshotCache, cfg.Cache.ScreenshotTTL, log)

	// --- Blob store ---
	blobs, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("blob store connection failed")
	}

	// --- External collaborators ---
	captureClient := capture.NewClient(cfg.Capture.BaseURL, cfg.Capture.APIKey)
	fetcher := capture.NewFetcher(captureClient, screenshotCache, log)
	analyzer := ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	google := search.NewGoogleProvider(cfg.Search.APIKey)
	bing := search.NewBingProvider(cfg.Search.APIKey)

	// --- Broadcast hub (Redis-bridged for multi-instance fan-out) ---
	localHub := hub.New(log)
	bridge := hub.NewRedisBridge(ctx, localHub, rdb, log)
	defer bridge.Close()

	// --- Core services ---
	scans := service.NewScanService(websiteRepo, scanRepo, log)
	resolver := service.NewIdentityService(auth.NewJWTVerifier(cfg.JWTSecret), scanRepo, log)
	pipeline := service.NewPipeline(scans, fetcher, blobs, analyzer, google, bing, bridge, log)

	dispatcher := queue.NewDispatcher(cfg.ScanWorkers, pipeline, log)
	dispatcher.Start(ctx)

	// --- HTTP surface ---
	e := api.NewRouter(api.Dependencies{
		Scans:       scans,
		Resolver:    resolver,
		Blobs:       blobs,
		Hub:         bridge,
		Submit:      func(scanID, url string) { dispatcher.Submit(scanID, url) },
		AssetExpiry: cfg.Assets.PresignExpiry,
		Mongo:       db,
		Redis:       rdb,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("scan engine listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}

// sweepPeriodically purges expired screenshots at TTL intervals until ctx is
// cancelled.
func sweepPeriodically(ctx context.Context, cache *redisdb.ScreenshotCache, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := cache.Sweep(ctx); err != nil {
				log.Warn().Err(err).Msg("cache sweep failed")
			} else if removed > 0 {
				log.Info().Int("removed", removed).Msg("swept expired screenshots")
			}
		}
	}
}
