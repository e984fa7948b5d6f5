// Command server runs the likes API.
//
// @title          Free Fire Likes API
// @version        1.0
// @description    Likes orchestration with per-device cooldown, provider fallbacks, durable history and a live feed.
// @BasePath       /api
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/leozinbrozgg/freefirelikes2025/internal/auth"
	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
	"github.com/leozinbrozgg/freefirelikes2025/internal/config"
	"github.com/leozinbrozgg/freefirelikes2025/internal/cooldown"
	"github.com/leozinbrozgg/freefirelikes2025/internal/feed"
	httpapi "github.com/leozinbrozgg/freefirelikes2025/internal/http"
	"github.com/leozinbrozgg/freefirelikes2025/internal/observability"
	"github.com/leozinbrozgg/freefirelikes2025/internal/repo"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
	"github.com/leozinbrozgg/freefirelikes2025/internal/sysutil"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

const purgeInterval = time.Hour

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.MustLoad()
	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev")

	sysutil.SetLogLevel(cfg.LogLevel)
	logger := sysutil.InitLogger(os.Stdout, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.Path, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	clk := clock.New()

	// Redis is optional; without it cooldowns and the feed stay in process.
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		log.Info().Msg("connected to redis")
	}

	var store cooldown.Store
	if rdb != nil {
		store = cooldown.NewRedisStore(rdb, cfg.Redis.Prefix)
	} else {
		mem := cooldown.NewMemoryStore()
		go mem.RunSweeper(ctx, cfg.Cooldown.SweepInterval, clk.Now)
		store = mem
	}
	gate := cooldown.NewGate(store, cfg.Cooldown.Window, clk, logger)

	provider := upstream.New(upstream.Config{
		LikesURL:    cfg.Upstream.LikesURL,
		LikesKey:    cfg.Upstream.LikesKey,
		PlayerURL:   cfg.Upstream.PlayerURL,
		PlayerKey:   cfg.Upstream.PlayerKey,
		ProxyURL:    cfg.Upstream.ProxyURL,
		EnvelopeURL: cfg.Upstream.EnvelopeURL,
		RelayURL:    cfg.Upstream.RelayURL,
		RelayAPIKey: cfg.Upstream.RelayAPIKey,
		Timeout:     cfg.Upstream.Timeout,
		Strategies:  cfg.Upstream.Strategies,
	}, upstream.WithLogger(logger))
	if len(provider.Strategies()) == 0 {
		log.Warn().Msg("no likes strategy configured; sends will fail with 502")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{
		Version:    version,
		Strategies: provider.Strategies(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	hub := newFeedHub(ctx, db, cfg.Feed, logger)

	var notifier services.Notifier = hub
	if rdb != nil {
		bridge := feed.NewRedisBridge(rdb, cfg.Feed.Channel, hub, logger)
		notifier = bridge
		go bridge.Serve(ctx, feed.DefaultMinBackoff, feed.DefaultMaxBackoff)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	idem := httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Provider: provider,
		Gate:     gate,
		Hub:      hub,
		Notifier: notifier,
		Auth:     auth.NewManager(cfg.Admin.JWTSecret, cfg.Admin.Code, cfg.Admin.TokenTTL),
		Clock:    clk,
	}, cfg)

	go purgeIdempotency(ctx, idem)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Str("version", version).Strs("strategies", provider.Strategies()).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("stopped")
}

// newFeedHub builds the live feed and fills its whole ring from storage so
// the feed stats cover Capacity entries; viewers still get only the newest
// Replay entries on connect.
func newFeedHub(ctx context.Context, db *gorm.DB, cfg config.FeedConfig, logger zerolog.Logger) *feed.Hub {
	hub := feed.NewHub(cfg.Capacity, cfg.Replay, logger)
	limit := cfg.Capacity
	if limit <= 0 {
		limit = feed.DefaultCapacity
	}
	recent, err := repo.ListHistoryPage(ctx, db, 0, limit)
	if err != nil {
		logger.Warn().Err(err).Msg("feed seed failed; starting empty")
		return hub
	}
	hub.Seed(recent)
	return hub
}

// purgeIdempotency drops expired replay keys until ctx is done.
func purgeIdempotency(ctx context.Context, idem *services.IdempotencyService) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := idem.Purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("idempotency keys purged")
			}
		}
	}
}
