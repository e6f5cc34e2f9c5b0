package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/rs/zerolog"
)

// RedisStore is a Store backed by Redis, for deployments where multiple
// instances should share one cache tier. TTLs are enforced by Redis key
// expiry; capacity bounding is delegated to the server's eviction policy
// (allkeys-lru recommended).
type RedisStore struct {
	redis      *redis.Client
	namespaces map[string]Namespace
	logger     zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, namespaces []Namespace) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	s := &RedisStore{
		redis:      redisClient,
		namespaces: make(map[string]Namespace, len(namespaces)),
		logger:     logging.NewLogger("cache"),
	}
	for _, ns := range namespaces {
		s.namespaces[ns.Name] = ns
	}
	return s
}

// redisKey builds the namespaced key.
// Format: riot:<namespace>:<key>
func redisKey(namespace, key string) string {
	return fmt.Sprintf("riot:%s:%s", namespace, key)
}

// Get implements Store. Backend errors degrade to a miss.
func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	data, err := s.redis.Get(ctx, redisKey(namespace, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("get").Inc()
			s.logger.Warn().Err(err).Str("namespace", namespace).Msg("Redis get error")
		}
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.WithLabelValues("redis").Inc()
	return data, true
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ns, ok := s.namespaces[namespace]
		if !ok {
			s.logger.Warn().Str("namespace", namespace).Msg("Set on unknown cache namespace")
			return
		}
		ttl = ns.TTL
	}

	if err := s.redis.Set(ctx, redisKey(namespace, key), value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("namespace", namespace).Msg("Redis set error")
	}
}

// Clear implements Store. Scans the namespace prefix and deletes in batches.
func (s *RedisStore) Clear(ctx context.Context, namespace string) {
	pattern := fmt.Sprintf("riot:%s:*", namespace)

	iter := s.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				CacheErrors.WithLabelValues("clear").Inc()
				s.logger.Warn().Err(err).Str("namespace", namespace).Msg("Redis del error")
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		s.logger.Warn().Err(err).Str("namespace", namespace).Msg("Redis scan error")
		return
	}
	if len(keys) > 0 {
		if err := s.redis.Del(ctx, keys...).Err(); err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			s.logger.Warn().Err(err).Str("namespace", namespace).Msg("Redis del error")
		}
	}
}
