package config

import (
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED",
		"API_BASE_PATH", "DB_PATH", "REDIS_URL", "CACHE_TTL", "MAX_QUERY_RUNES",
		"GUEST_RATE_POINTS", "GUEST_RATE_WINDOW", "USER_RATE_POINTS", "USER_RATE_WINDOW",
		"EDGE_RATE_RPS", "EDGE_RATE_BURST",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "MAX_OUTPUT_TOKENS", "LLM_TIMEOUT",
		"RSS3_DSL_URL", "OSSINSIGHT_URL", "PROVIDER_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("server defaults wrong: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.CacheTTL != 48*time.Hour {
		t.Fatalf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.MaxQueryRunes != 100 {
		t.Fatalf("MaxQueryRunes = %d", cfg.MaxQueryRunes)
	}
	if cfg.GuestRate.Points != 20 || cfg.GuestRate.Window != 24*time.Hour {
		t.Fatalf("GuestRate = %+v", cfg.GuestRate)
	}
	if cfg.UserRate.Points != 50 || cfg.UserRate.Window != 24*time.Hour {
		t.Fatalf("UserRate = %+v", cfg.UserRate)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.LLM.MaxOutputTokens != 4096 {
		t.Fatalf("LLM defaults wrong: %+v", cfg.LLM)
	}
	if cfg.Provider.RSS3URL == "" || cfg.Provider.OSSInsightURL == "" {
		t.Fatalf("provider defaults missing: %+v", cfg.Provider)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("REDIS_URL default should be empty (in-process store)")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "WARNING") // normalized to warn
	t.Setenv("GIN_MODE", "weird")    // coerced to release
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("GUEST_RATE_POINTS", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.GuestRate.Points != 5 {
		t.Fatalf("GuestRate.Points = %d", cfg.GuestRate.Points)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORS = %+v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_QUERY_RUNES", "not-a-number")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("EDGE_RATE_RPS", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxQueryRunes != 100 || cfg.CacheTTL != 48*time.Hour || cfg.EdgeRateRPS != 5.0 {
		t.Fatalf("unparseable values should keep defaults: %+v", cfg)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		k, v string
	}{
		{"bad log level", "LOG_LEVEL", "loud"},
		{"zero points", "GUEST_RATE_POINTS", "0"},
		{"zero max tokens", "MAX_OUTPUT_TOKENS", "0"},
		{"zero query runes", "MAX_QUERY_RUNES", "0"},
		{"zero burst", "EDGE_RATE_BURST", "0"},
		{"negative rps", "EDGE_RATE_RPS", "-1"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.k, tc.v)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.k, tc.v)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1", "/api/v1"},
		{"/api/v1/", "/api/v1"},
		{"api/v1///", "/api/v1"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
