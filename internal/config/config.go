// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage paths, rate-limit budgets, model
// backend parameters, and observability.
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-insight-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LLMConfig defines the OpenAI-compatible text-generation backend.
type LLMConfig struct {
	APIKey          string        // OPENAI_API_KEY
	BaseURL         string        // OPENAI_BASE_URL (empty for api.openai.com)
	Model           string        // OPENAI_MODEL
	MaxOutputTokens int           // MAX_OUTPUT_TOKENS per call
	Timeout         time.Duration // LLM_TIMEOUT per call
}

// ProviderConfig defines the external data-provider endpoints.
type ProviderConfig struct {
	RSS3URL       string        // RSS3_DSL_URL (EVM activity feed)
	OSSInsightURL string        // OSSINSIGHT_URL (GitHub repo/user metrics)
	Timeout       time.Duration // PROVIDER_TIMEOUT per fetch
}

// RateConfig defines one points-per-window budget for the search limiter.
type RateConfig struct {
	Points int           // allowed submissions per window
	Window time.Duration // rolling window length
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must exceed the slowest model call
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath        string        // SQLite path for query records
	RedisURL      string        // empty selects in-process cache/limiter stores
	CacheTTL      time.Duration // provider payload TTL
	MaxQueryRunes int           // submission text ceiling

	// Domain rate limiting (per-identity point budgets)
	GuestRate RateConfig // anonymous callers, keyed by client IP
	UserRate  RateConfig // authenticated callers, keyed by user id

	// Edge rate limiting (token bucket in front of everything)
	EdgeRateRPS   float64 // tokens per second (>= 0)
	EdgeRateBurst int     // bucket size (>= 1)

	// Backends
	LLM      LLMConfig
	Provider ProviderConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

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
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:        getenv("DB_PATH", "app.db"),
		RedisURL:      getenv("REDIS_URL", ""),
		CacheTTL:      getdur("CACHE_TTL", 48*time.Hour),
		MaxQueryRunes: getint("MAX_QUERY_RUNES", 100),

		// Domain rate limiting
		GuestRate: RateConfig{
			Points: getint("GUEST_RATE_POINTS", 20),
			Window: getdur("GUEST_RATE_WINDOW", 24*time.Hour),
		},
		UserRate: RateConfig{
			Points: getint("USER_RATE_POINTS", 50),
			Window: getdur("USER_RATE_WINDOW", 24*time.Hour),
		},

		// Edge rate limiting
		EdgeRateRPS:   getfloat("EDGE_RATE_RPS", 5.0),
		EdgeRateBurst: getint("EDGE_RATE_BURST", 10),

		// Backends
		LLM: LLMConfig{
			APIKey:          getenv("OPENAI_API_KEY", ""),
			BaseURL:         getenv("OPENAI_BASE_URL", ""),
			Model:           getenv("OPENAI_MODEL", "gpt-4o"),
			MaxOutputTokens: getint("MAX_OUTPUT_TOKENS", 4096),
			Timeout:         getdur("LLM_TIMEOUT", 60*time.Second),
		},
		Provider: ProviderConfig{
			RSS3URL:       getenv("RSS3_DSL_URL", "https://gi.rss3.io"),
			OSSInsightURL: getenv("OSSINSIGHT_URL", "https://api.ossinsight.io/v1"),
			Timeout:       getdur("PROVIDER_TIMEOUT", 15*time.Second),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-insight-backend"),
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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.MaxQueryRunes < 1 {
		return cfg, errors.New("MAX_QUERY_RUNES must be >= 1")
	}
	if cfg.GuestRate.Points < 1 || cfg.UserRate.Points < 1 {
		return cfg, errors.New("rate-limit points must be >= 1")
	}
	if cfg.GuestRate.Window <= 0 || cfg.UserRate.Window <= 0 {
		return cfg, errors.New("rate-limit windows must be positive durations")
	}
	if cfg.EdgeRateRPS < 0 {
		return cfg, errors.New("EDGE_RATE_RPS must be >= 0")
	}
	if cfg.EdgeRateBurst < 1 {
		return cfg, errors.New("EDGE_RATE_BURST must be >= 1")
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		return cfg, errors.New("OPENAI_MODEL must not be empty")
	}
	if cfg.LLM.MaxOutputTokens < 1 {
		return cfg, errors.New("MAX_OUTPUT_TOKENS must be >= 1")
	}
	if cfg.LLM.Timeout <= 0 || cfg.Provider.Timeout <= 0 {
		return cfg, errors.New("backend timeouts must be positive durations")
	}
	if strings.TrimSpace(cfg.Provider.RSS3URL) == "" || strings.TrimSpace(cfg.Provider.OSSInsightURL) == "" {
		return cfg, errors.New("provider base URLs must not be empty")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
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
