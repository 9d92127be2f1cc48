package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/satriawan/awardsearch/internal/aggregator"
	"github.com/satriawan/awardsearch/internal/cache"
	"github.com/satriawan/awardsearch/internal/handler"
	"github.com/satriawan/awardsearch/internal/obs"
	"github.com/satriawan/awardsearch/internal/providers"
	"github.com/satriawan/awardsearch/internal/ratelimit"
	"github.com/satriawan/awardsearch/internal/search"
)

type Config struct {
	Port            string
	ProviderTimeout time.Duration
	MaxRetries      int
	CacheEnabled    bool
	RedisHost       string
	RedisPort       string
	RedisPassword   string
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := loadConfig()

	providerList, err := initializeProviders()
	if err != nil {
		logger.Error("failed to initialize providers", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("initialized award providers", slog.Int("count", len(providerList)))

	var store cache.Store
	if cfg.CacheEnabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = redisStore
		logger.Info("redis cache store enabled",
			slog.String("host", cfg.RedisHost),
			slog.String("port", cfg.RedisPort))
	} else {
		store = cache.NewMemoryStore()
		logger.Info("using in-memory cache store; fallback will not survive restarts")
	}
	defer store.Close()

	rateLimiter := ratelimit.NewProviderLimiterWithDefaults()
	rateLimiter.SetProviderLimit("AA", 1, 3)
	rateLimiter.SetProviderLimit("AS", 2, 5)
	rateLimiter.SetProviderLimit("VS", 1, 3)
	rateLimiter.SetProviderLimit("AF", 5, 10)

	metrics := obs.NewMetrics(prometheus.NewRegistry())

	aggConfig := aggregator.DefaultConfig()
	aggConfig.ProviderTimeout = cfg.ProviderTimeout
	aggConfig.MaxRetries = cfg.MaxRetries
	aggConfig.RateLimiter = rateLimiter

	agg := aggregator.NewAggregator(providerList, store, aggConfig, metrics, logger)
	service := search.NewService(agg, metrics, logger)
	searchHandler := handler.NewSearchHandler(service)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.POST("/awards/search", searchHandler.Search)
	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	logger.Info("starting award aggregator server", slog.String("port", cfg.Port))

	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 25*time.Second),
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),
		CacheEnabled:    getEnvBool("CACHE_ENABLED", true),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
	}
}

// Credentials come from the external session-capture tooling via the
// environment; adapters receive them at construction and never look them
// up themselves.
func initializeProviders() ([]providers.Provider, error) {
	american := providers.NewAmericanProvider(providers.Config{
		BaseURL: getEnv("AA_BASE_URL", "https://www.aa.com"),
		Credentials: providers.Credentials{
			Cookie:    os.Getenv("AA_COOKIE"),
			XSRFToken: os.Getenv("AA_XSRF_TOKEN"),
		},
	})

	alaska := providers.NewAlaskaProvider(providers.Config{
		BaseURL: getEnv("AS_BASE_URL", "https://www.alaskaair.com"),
		Credentials: providers.Credentials{
			Cookie:    os.Getenv("AS_COOKIE"),
			SessionID: os.Getenv("AS_SESSION_ID"),
		},
	})

	virgin := providers.NewVirginProvider(providers.Config{
		BaseURL: getEnv("VS_BASE_URL", "https://www.virginatlantic.com"),
		Credentials: providers.Credentials{
			Cookie:        os.Getenv("VS_COOKIE"),
			Authorization: os.Getenv("VS_AUTHORIZATION"),
		},
	})

	airfrance, err := providers.NewAirFranceProvider()
	if err != nil {
		return nil, err
	}

	return []providers.Provider{american, alaska, virgin, airfrance}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
