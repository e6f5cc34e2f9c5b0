// insights-server exposes the player insight pipeline over HTTP: Riot ID in,
// scored behavioral insights out. All shared components are constructed here
// once and injected; nothing in the packages below holds global state.
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/riftwatch/riot-insights/pkg/cache"
	"github.com/riftwatch/riot-insights/pkg/client"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/riftwatch/riot-insights/pkg/riot"
	"github.com/riftwatch/riot-insights/pkg/rules"
	"github.com/riftwatch/riot-insights/pkg/scheduler"
	"github.com/riftwatch/riot-insights/pkg/signals"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnvBool("LOG_PRETTY", false),
		Output: os.Stderr,
	})

	apiKey := os.Getenv("RIOT_API_KEY")
	if apiKey == "" {
		logger.Fatal().Msg("RIOT_API_KEY is required")
	}
	port := getEnv("PORT", "8080")

	store := newStore(logger)

	sched, err := scheduler.New(scheduler.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	httpClient, err := client.New(client.DefaultConfig(sched, apiKey))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Riot client")
	}

	riotClient, err := riot.NewClient(httpClient, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create endpoint client")
	}

	builderCfg := signals.DefaultConfig()
	builderCfg.DeepEnabled = getEnvBool("DEEP_SIGNALS_ENABLED", true)
	builder, err := signals.NewBuilder(builderCfg, riotClient, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create signal builder")
	}
	defer builder.Close()

	srv := &server{
		riot:    riotClient,
		builder: builder,
		engine:  rules.NewEngine(rules.DefaultConfig()),
		logger:  logging.NewLogger("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/insights/{platform}/{gameName}/{tagLine}", srv.insightsHandler)

	handler := rateLimitMiddleware()(mux)

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Bool("deep_signals", builderCfg.DeepEnabled).
		Msg("Starting insights server")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// newStore picks the cache backend: Redis when REDIS_URL is set, in-process
// memory otherwise.
func newStore(logger zerolog.Logger) cache.Store {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		logger.Info().Msg("Using in-memory cache")
		return cache.NewMemoryStore(cache.DefaultNamespaces())
	}

	redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis_url", redisURL).Msg("Using Redis cache")
	return cache.NewRedisStore(redisClient, cache.DefaultNamespaces())
}

// rateLimitMiddleware bounds inbound requests per client IP.
func rateLimitMiddleware() func(http.Handler) http.Handler {
	rate, err := limiter.NewRateFromFormatted(getEnv("RATE_LIMIT", "120-M"))
	if err != nil {
		rate = limiter.Rate{Period: time.Minute, Limit: 120}
	}
	instance := limiter.New(limitermem.NewStore(), rate)
	mw := limitermw.NewMiddleware(instance)
	return func(next http.Handler) http.Handler {
		return mw.Handler(next)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
