package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// reissueTTL is the window during which a retried issuance with the same
// registration nonce returns the originally minted pair.
const reissueTTL = time.Hour

// TokenPairCache stores issued token pairs keyed by registration nonce.
// Key format: tokens:<nonce>
type TokenPairCache struct {
	client *redis.Client
}

// NewTokenPairCache creates a TokenPairCache wrapping the given Redis client.
func NewTokenPairCache(client *redis.Client) *TokenPairCache {
	return &TokenPairCache{client: client}
}

// Get returns the cached pair for a nonce, or (nil, nil) on a miss.
func (c *TokenPairCache) Get(ctx context.Context, nonce string) (*domain.TokenPair, error) {
	raw, err := c.client.Get(ctx, c.key(nonce)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token cache get: %w", err)
	}

	var pair domain.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("token cache decode: %w", err)
	}
	return &pair, nil
}

// Store records the pair minted for a nonce (expires after reissueTTL).
func (c *TokenPairCache) Store(ctx context.Context, nonce string, pair domain.TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("token cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(nonce), raw, reissueTTL).Err()
}

func (c *TokenPairCache) key(nonce string) string {
	return "tokens:" + nonce
}
