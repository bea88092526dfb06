// Package cache holds the catalog's read-through cache. The cache is never the
// source of truth for dishes: every operation reports its result as a value and
// callers treat any failure as a miss or a skipped write.
package cache

import (
	"context"
	"strconv"
	"time"
)

// DishKeyPrefix prefixes every per-category dish list entry.
const DishKeyPrefix = "dish_"

// DishKey returns the cache key of the on-sale dish list of a category.
func DishKey(categoryID int64) string {
	return DishKeyPrefix + strconv.FormatInt(categoryID, 10)
}

// State classifies the result of a lookup.
type State int

const (
	// Miss means the key holds no value.
	Miss State = iota
	// Hit means a value was found.
	Hit
	// Failed means the cache could not be consulted.
	Failed
)

func (s State) String() string {
	switch s {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lookup is the result of a Get.
type Lookup struct {
	State State
	Value []byte
	Err   error
}

// Outcome is the result of a write or delete. Deleted counts removed keys
// where the backend reports it.
type Outcome struct {
	Deleted int64
	Err     error
}

// Failed reports whether the operation did not complete.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Cache is a key-value store with prefix deletion. Implementations must not
// panic and must bound every call by their own operation timeout.
type Cache interface {
	Get(ctx context.Context, key string) Lookup
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) Outcome
	Delete(ctx context.Context, keys ...string) Outcome
	DeleteByPrefix(ctx context.Context, prefix string) Outcome
}
