package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/infrastructure/config"
)

const summaryKeyPrefix = "sentinel:summary:"

// SummaryCache keeps aggregate summaries in Redis under a short TTL so
// reporting does not hit the registry on every request.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSummaryCache connects to Redis and verifies the connection.
func NewSummaryCache(cfg *config.RedisConfig, logger *zap.Logger) (*SummaryCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	ttl := cfg.SummaryTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	logger.Info("summary cache initialized",
		zap.String("addr", cfg.URL),
		zap.Duration("ttl", ttl))

	return &SummaryCache{client: client, ttl: ttl, logger: logger}, nil
}

// NewSummaryCacheWithClient wraps an existing client. Test hook.
func NewSummaryCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SummaryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl, logger: logger}
}

// GetSummary returns the cached summary for key, or nil on a miss.
func (c *SummaryCache) GetSummary(ctx context.Context, key string) (*analysis.Summary, error) {
	payload, err := c.client.Get(ctx, summaryKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.Error("summary cache get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var summary analysis.Summary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, fmt.Errorf("unmarshaling cached summary: %w", err)
	}
	return &summary, nil
}

// SetSummary stores the summary under the cache TTL.
func (c *SummaryCache) SetSummary(ctx context.Context, key string, summary *analysis.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Error("summary cache set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateSummaries drops every cached summary.
func (c *SummaryCache) InvalidateSummaries(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, summaryKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
