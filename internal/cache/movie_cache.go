// internal/cache/movie_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movie-catalog/internal/domain"

	"github.com/redis/go-redis/v9"
)

// MovieCache is a read-through cache for single-movie lookups. Per-viewer
// fields such as is_favorited are never cached.
type MovieCache interface {
	Get(ctx context.Context, id int64) (*domain.Movie, bool)
	Set(ctx context.Context, movie *domain.Movie)
	Invalidate(ctx context.Context, id int64)
}

// NoopCache is used when Redis is disabled or unreachable.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int64) (*domain.Movie, bool) { return nil, false }
func (NoopCache) Set(context.Context, *domain.Movie) {}
func (NoopCache) Invalidate(context.Context, int64) {}

// RedisMovieCache stores movies as JSON under movie:{id}. Errors are logged
// and treated as misses.
type RedisMovieCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisMovieCache(rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisMovieCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisMovieCache{rdb: rdb, ttl: ttl, logger: logger}
}

func movieKey(id int64) string {
	return fmt.Sprintf("movie:%d", id)
}

func (c *RedisMovieCache) Get(ctx context.Context, id int64) (*domain.Movie, bool) {
	raw, err := c.rdb.Get(ctx, movieKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Movie cache read failed", slog.Int64("movieID", id), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var movie domain.Movie
	if err := json.Unmarshal(raw, &movie); err != nil {
		c.logger.WarnContext(ctx, "Discarding corrupt movie cache entry", slog.Int64("movieID", id), slog.String("error", err.Error()))
		c.Invalidate(ctx, id)
		return nil, false
	}
	movie.IsFavorited = false
	c.logger.DebugContext(ctx, "Movie cache hit", slog.Int64("movieID", id))
	return &movie, true
}

func (c *RedisMovieCache) Set(ctx context.Context, movie *domain.Movie) {
	cp := *movie
	cp.IsFavorited = false
	raw, err := json.Marshal(&cp)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode movie for cache", slog.Int64("movieID", movie.ID), slog.String("error", err.Error()))
		return
	}
	if err := c.rdb.Set(ctx, movieKey(movie.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Movie cache write failed", slog.Int64("movieID", movie.ID), slog.String("error", err.Error()))
	}
}

func (c *RedisMovieCache) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, movieKey(id)).Err(); err != nil {
		c.logger.WarnContext(ctx, "Movie cache invalidation failed", slog.Int64("movieID", id), slog.String("error", err.Error()))
	}
}

// Connect dials Redis and falls back to NoopCache when the server does not
// answer a ping. The returned close func is always safe to call.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *slog.Logger) (MovieCache, func() error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WarnContext(ctx, "Failed to connect to redis, movie cache disabled", slog.String("addr", addr), slog.String("error", err.Error()))
		_ = rdb.Close()
		return NoopCache{}, func() error { return nil }
	}
	logger.InfoContext(ctx, "Redis connected, movie cache enabled", slog.String("addr", addr))
	return NewRedisMovieCache(rdb, ttl, logger), rdb.Close
}
