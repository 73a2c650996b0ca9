package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewCacheClient creates the shared-tier cache client. An empty URL disables
// the shared tier and returns nil, which the catalog store treats as
// memory-only operation.
func NewCacheClient(redisURL string) (redis.UniversalClient, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return redis.NewClient(opts), nil
}
