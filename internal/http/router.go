// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, access codes and rate
// limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/leozinbrozgg/freefirelikes2025/docs" // swagger spec registration

	"github.com/leozinbrozgg/freefirelikes2025/internal/auth"
	"github.com/leozinbrozgg/freefirelikes2025/internal/clock"
	"github.com/leozinbrozgg/freefirelikes2025/internal/config"
	"github.com/leozinbrozgg/freefirelikes2025/internal/cooldown"
	"github.com/leozinbrozgg/freefirelikes2025/internal/feed"
	"github.com/leozinbrozgg/freefirelikes2025/internal/http/handlers"
	"github.com/leozinbrozgg/freefirelikes2025/internal/http/middleware"
	"github.com/leozinbrozgg/freefirelikes2025/internal/services"
	"github.com/leozinbrozgg/freefirelikes2025/internal/upstream"
)

// wsPath is the live feed endpoint. It is excluded from gzip and from the
// request latency histograms.
const wsPath = "/ws/history"

// Deps are the long-lived collaborators built by the entrypoint.
type Deps struct {
	DB       *gorm.DB
	Provider *upstream.Client
	Gate     *cooldown.Gate
	Hub      *feed.Hub
	// Notifier receives new entries; defaults to Hub. Set it to the Redis
	// bridge to fan out across instances.
	Notifier services.Notifier
	Auth     *auth.Manager
	Clock    clock.Clock
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and returns the idempotency service so the caller can purge it.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII and secret scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. gzip (JSON routes only)
//  8. CORS and Security headers
//
// Under the API base path:
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Access code (optional at group level, required per route)
//  11. Rate limiter (per client/IP, bypass on replay)
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) *services.IdempotencyService {
	r.HandleMethodNotAllowed = true
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Notifier == nil && d.Hub != nil {
		d.Notifier = d.Hub
	}
	if d.Gate == nil {
		d.Gate = cooldown.NewGate(cooldown.NewMemoryStore(), cfg.Cooldown.Window, d.Clock, log.Logger)
	}
	if d.Auth == nil {
		d.Auth = auth.NewManager("", "", 0) // admin login disabled
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderAPIKey,
			middleware.HeaderAccessCode,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics(wsPath))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression; websocket upgrades must see the raw writer
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{wsPath, "/metrics"})))

	// 8) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderIdempotencyKey,
		middleware.HeaderDeviceID,
		middleware.HeaderAccessCode,
		middleware.HeaderAPIKey,
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "Retry-After", "Idempotency-Replayed", "ETag"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers; send results, access sessions and admin views are never cached
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		PrivatePrefixes: middleware.PrivateRoutes(cfg.APIBasePath),
		EnablePolicy:    true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Live feed
	if d.Hub != nil {
		r.GET(wsPath, gin.WrapH(feed.NewWSHandler(d.Hub, cfg.CORS.AllowedOrigins, log.Logger)))
	}

	// Dependency injection: services ← repo/db/provider
	recorder := &services.HistoryRecorder{DB: d.DB, Log: log.Logger, Clock: d.Clock}
	likeSvc := &services.LikeService{
		Provider:    d.Provider,
		Cooldown:    d.Gate,
		Recorder:    recorder,
		Notifier:    d.Notifier,
		Log:         log.Logger,
		MinPlayerID: cfg.Likes.MinPlayerID,
		MaxPlayerID: cfg.Likes.MaxPlayerID,
		MaxQuantity: cfg.Likes.MaxQuantity,
	}
	accessSvc := &services.AccessService{DB: d.DB, Clock: d.Clock}
	idemSvc := &services.IdempotencyService{DB: d.DB, TTL: cfg.IdempotencyTTL, Clock: d.Clock}

	h := handlers.New(handlers.Deps{
		Likes:    likeSvc,
		Cooldown: d.Gate,
		Replays:  idemSvc,
		Relay:    d.Provider,
		History:  services.NewHistoryService(d.DB),
		Access:   accessSvc,
		Admin:    d.Auth,
	})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api"

	// 9) Idempotency validation (before rate limiting)
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, deviceID, key string, now time.Time) (bool, error) {
			return idemSvc.Exists(ctx, deviceID, key, now)
		},
	))

	// 10) Access code: binds the client when a code is presented
	api.Use(middleware.AccessCode(accessSvc, false))

	// 11) Token-bucket rate limiter per client/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientOrIP())
	api.Use(rl.Handler())

	{
		// Likes
		likes := []gin.HandlerFunc{h.SendLikes}
		if cfg.AccessRequired {
			likes = append([]gin.HandlerFunc{middleware.RequireClient()}, likes...)
		}
		api.POST("/likes", likes...)
		api.GET("/cooldown", h.GetCooldown)

		// Relay
		relay := api.Group("", middleware.APIKey(cfg.RelayAPIKeys))
		relay.POST("/send-likes", h.SendLikesRelay)
		relay.GET("/player", h.PlayerRelay)

		// History
		api.GET("/global-history", h.GlobalHistory)
		api.GET("/global-stats", h.GlobalStats)
		api.GET("/players/:id/history", h.PlayerHistory)

		// Access codes
		api.POST("/access/redeem", h.RedeemCode)
		api.GET("/access/me", middleware.RequireClient(), h.AccessMe)

		// Admin
		api.POST("/admin/login", h.AdminLogin)
		admin := api.Group("/admin", middleware.AdminAuth(d.Auth))
		admin.POST("/codes", h.CreateCode)
		admin.GET("/codes", h.ListCodes)
		admin.DELETE("/codes/:id", h.DeleteCode)
		admin.GET("/clients", h.ListClients)
		admin.GET("/clients/:id/stats", h.ClientStats)
		admin.GET("/stats", h.AdminStats)
	}

	return idemSvc
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
