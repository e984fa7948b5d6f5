// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage, the likes provider, cooldown,
// live feed, rate limiting, admin access and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and locates the database.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file
	URL    string // Postgres DSN
}

// UpstreamConfig locates the likes provider and its intermediaries.
type UpstreamConfig struct {
	LikesURL    string
	LikesKey    string
	PlayerURL   string
	PlayerKey   string
	ProxyURL    string
	EnvelopeURL string
	RelayURL    string
	RelayAPIKey string
	Timeout     time.Duration
	Strategies  []string
}

// LikesConfig bounds a like request.
type LikesConfig struct {
	MinPlayerID int64
	MaxPlayerID int64
	MaxQuantity int
}

// CooldownConfig configures the per-device gate.
type CooldownConfig struct {
	Window        time.Duration
	SweepInterval time.Duration
}

// FeedConfig configures the live history feed.
type FeedConfig struct {
	Capacity int
	Replay   int
	Channel  string // Redis pub/sub channel
}

// RedisConfig is optional; an empty URL keeps state in process.
type RedisConfig struct {
	URL    string
	Prefix string
}

// AdminConfig controls the admin API.
type AdminConfig struct {
	Code      string // login code; empty disables the admin API
	JWTSecret string
	TokenTTL  time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	DB DBConfig

	// Rate limiting: RateMax requests per RateWindow, as a token bucket.
	RateMax    int
	RateWindow time.Duration
	RateRPS    float64 // derived
	RateBurst  int     // derived

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Domain
	Upstream       UpstreamConfig
	RelayAPIKeys   []string // accepted X-API-Key values on the relay; empty accepts any
	Likes          LikesConfig
	AccessRequired bool
	Cooldown       CooldownConfig
	Feed           FeedConfig
	Redis          RedisConfig
	Admin          AdminConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	likesKey := getenv("LIKES_API_KEY", "")
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "likes.db"),
			URL:    getenv("DATABASE_URL", ""),
		},

		// Rate limiting
		RateMax:    getint("RATE_LIMIT_MAX", 10),
		RateWindow: getdur("RATE_LIMIT_WINDOW", 15*time.Minute),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", getenv("ALLOWED_ORIGINS", ""))),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Upstream: UpstreamConfig{
			LikesURL:    getenv("LIKES_API_URL", ""),
			LikesKey:    likesKey,
			PlayerURL:   getenv("PLAYER_API_URL", ""),
			PlayerKey:   getenv("PLAYER_API_KEY", likesKey),
			ProxyURL:    getenv("CORS_PROXY_URL", ""),
			EnvelopeURL: getenv("ENVELOPE_PROXY_URL", ""),
			RelayURL:    getenv("RELAY_URL", ""),
			RelayAPIKey: getenv("RELAY_API_KEY", ""),
			Timeout:     getdur("UPSTREAM_TIMEOUT", 10*time.Second),
			Strategies:  splitCSV(strings.ToLower(getenv("LIKES_STRATEGIES", ""))),
		},
		RelayAPIKeys: splitCSV(getenv("RELAY_API_KEYS", "")),
		Likes: LikesConfig{
			MinPlayerID: getint64("MIN_PLAYER_ID", 100000001),
			MaxPlayerID: getint64("MAX_PLAYER_ID", 99999999999),
			MaxQuantity: getint("MAX_QUANTITY", 1000),
		},
		AccessRequired: getbool("ACCESS_REQUIRED", true),
		Cooldown: CooldownConfig{
			Window:        getdur("COOLDOWN_WINDOW", 30*time.Second),
			SweepInterval: getdur("COOLDOWN_SWEEP_INTERVAL", time.Minute),
		},
		Feed: FeedConfig{
			Capacity: getint("FEED_BUFFER", 1000),
			Replay:   getint("FEED_REPLAY", 50),
			Channel:  getenv("FEED_CHANNEL", "likes:history"),
		},
		Redis: RedisConfig{
			URL:    getenv("REDIS_URL", ""),
			Prefix: getenv("REDIS_PREFIX", "cooldown:"),
		},
		Admin: AdminConfig{
			Code:      getenv("ADMIN_CODE", ""),
			JWTSecret: getenv("JWT_SECRET", ""),
			TokenTTL:  getdur("ADMIN_TOKEN_TTL", 12*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "freefire-likes"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be sqlite or postgres")
	}
	if cfg.RateMax < 1 {
		return cfg, errors.New("RATE_LIMIT_MAX must be >= 1")
	}
	if cfg.RateWindow <= 0 {
		return cfg, errors.New("RATE_LIMIT_WINDOW must be > 0")
	}
	cfg.RateRPS = float64(cfg.RateMax) / cfg.RateWindow.Seconds()
	cfg.RateBurst = cfg.RateMax
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	for _, s := range cfg.Upstream.Strategies {
		switch s {
		case "relay", "proxy", "envelope", "direct":
		default:
			return cfg, errors.New("LIKES_STRATEGIES entries must be relay, proxy, envelope or direct")
		}
	}
	if cfg.Likes.MinPlayerID < 1 || cfg.Likes.MaxPlayerID < cfg.Likes.MinPlayerID {
		return cfg, errors.New("MIN_PLAYER_ID/MAX_PLAYER_ID must form a positive range")
	}
	if cfg.Likes.MaxQuantity < 1 {
		return cfg, errors.New("MAX_QUANTITY must be >= 1")
	}
	if cfg.Cooldown.Window <= 0 || cfg.Cooldown.SweepInterval <= 0 {
		return cfg, errors.New("COOLDOWN_WINDOW and COOLDOWN_SWEEP_INTERVAL must be > 0")
	}
	if cfg.Feed.Capacity < 1 || cfg.Feed.Replay < 1 {
		return cfg, errors.New("FEED_BUFFER and FEED_REPLAY must be >= 1")
	}
	if cfg.Feed.Replay > cfg.Feed.Capacity {
		cfg.Feed.Replay = cfg.Feed.Capacity
	}
	if cfg.Admin.Code != "" && len(cfg.Admin.JWTSecret) < 16 {
		return cfg, errors.New("JWT_SECRET must be at least 16 bytes when ADMIN_CODE is set")
	}
	if cfg.Admin.TokenTTL <= 0 {
		return cfg, errors.New("ADMIN_TOKEN_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
