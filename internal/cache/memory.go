package cache

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	memoryShards             = 16
	memoryEvictionPercentage = 10
	memoryDefaultTTL         = 30 * time.Minute
)

// memoryCache implements Cache in process using sturdyc. It is meant for
// single-instance deployments and tests; multi-instance deployments keep
// their copies consistent through catalog events.
type memoryCache struct {
	client *sturdyc.Client[[]byte]
}

// NewMemoryCache creates an in-process cache holding at most capacity entries.
// The ttl applies to every entry; per-call ttls are ignored.
func NewMemoryCache(capacity int, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = memoryDefaultTTL
	}
	shards := memoryShards
	if capacity < shards {
		shards = 1
	}
	return &memoryCache{
		client: sturdyc.New[[]byte](capacity, shards, ttl, memoryEvictionPercentage),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) Lookup {
	value, ok := c.client.Get(key)
	if !ok {
		return Lookup{State: Miss}
	}
	return Lookup{State: Hit, Value: value}
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) Outcome {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.client.Set(key, stored)
	return Outcome{}
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) Outcome {
	var deleted int64
	for _, key := range keys {
		if _, ok := c.client.Get(key); ok {
			deleted++
		}
		c.client.Delete(key)
	}
	return Outcome{Deleted: deleted}
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) Outcome {
	var deleted int64
	for _, key := range c.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			c.client.Delete(key)
			deleted++
		}
	}
	return Outcome{Deleted: deleted}
}
