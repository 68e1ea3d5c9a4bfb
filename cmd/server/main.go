// Command server runs the insight query backend.
//
// Startup order: env + config, logging, tracing, storage, backends, HTTP.
// Shutdown drains in-flight requests before flushing the trace pipeline.
//
// @title          Web3 Insight Backend API
// @version        1.0
// @description    Query submission and streamed resolution over GitHub and on-chain activity data.
// @BasePath       /api/v1
// @schemes        http https
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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3insight/go-insight-backend/internal/cache"
	"github.com/web3insight/go-insight-backend/internal/classify"
	"github.com/web3insight/go-insight-backend/internal/config"
	httpapi "github.com/web3insight/go-insight-backend/internal/http"
	"github.com/web3insight/go-insight-backend/internal/limiter"
	"github.com/web3insight/go-insight-backend/internal/llm"
	"github.com/web3insight/go-insight-backend/internal/observability"
	"github.com/web3insight/go-insight-backend/internal/providers"
	"github.com/web3insight/go-insight-backend/internal/repo"
	"github.com/web3insight/go-insight-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// Shared store for payload caching and point budgets: Redis when
	// configured, in-process otherwise.
	var store cache.Store
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rs.Close()
		store = rs
		log.Info().Msg("using redis store")
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_URL not set; using in-process store")
	}

	gen := llm.NewClient(cfg.LLM)
	engine := llm.NewEngine(gen, cfg.LLM.MaxOutputTokens)
	classifier := classify.New(engine)

	providerClient := providers.New(cfg.Provider.RSS3URL, cfg.Provider.OSSInsightURL, cfg.Provider.Timeout)
	providerCache := cache.New(store, providerClient, cfg.CacheTTL)

	deps := httpapi.Deps{
		DB:            db,
		Classifier:    classifier,
		ProviderCache: providerCache,
		Engine:        engine,
		GuestLimiter:  limiter.New(store, "rate:guest", cfg.GuestRate),
		UserLimiter:   limiter.New(store, "rate:user", cfg.UserRate),
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	httpapi.RegisterRoutes(router, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("bye")
}
