package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "analysis:search:"

// Cached memoises search results in Redis. Cache failures never fail a search.
type Cached struct {
	next   Searcher
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps next with a Redis cache entry per (text, topK).
func NewCached(next Searcher, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

// Search returns the cached result when present, otherwise queries next and
// stores a successful result.
func (c *Cached) Search(ctx context.Context, text string, topK int) ([]model.DocumentRef, error) {
	key := cacheKey(text, topK)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var docs []model.DocumentRef
		if jsonErr := json.Unmarshal(data, &docs); jsonErr == nil {
			c.logger.Debug("search cache hit", zap.String("key", key))
			return docs, nil
		}
		c.logger.Warn("discarding unreadable search cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("search cache read failed", zap.Error(err))
	}

	docs, err := c.next.Search(ctx, text, topK)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(docs)
	if err != nil {
		return docs, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache write failed", zap.Error(err))
	}
	return docs, nil
}

func cacheKey(text string, topK int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", topK, strings.ToLower(strings.TrimSpace(text)))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
