package cache

import (
	"strconv"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Generation identifies the invalidation state a cache key was read under.
type Generation struct {
	key   uint64
	sweep uint64
}

// String formats the generation for use in singleflight keys.
func (g Generation) String() string {
	return strconv.FormatUint(g.sweep, 10) + "." + strconv.FormatUint(g.key, 10)
}

// Generations counts invalidations per key. A loader takes the current
// generation before reading the store and only keeps its cache write when no
// invalidation of the key happened in between.
type Generations struct {
	keys  *xsync.MapOf[string, uint64]
	sweep atomic.Uint64
}

// NewGenerations returns an empty registry.
func NewGenerations() *Generations {
	return &Generations{keys: xsync.NewMapOf[string, uint64]()}
}

// Current returns the generation of key.
func (g *Generations) Current(key string) Generation {
	n, _ := g.keys.Load(key)
	return Generation{key: n, sweep: g.sweep.Load()}
}

// Unchanged reports whether key has not been invalidated since gen was taken.
func (g *Generations) Unchanged(key string, gen Generation) bool {
	return g.Current(key) == gen
}

// Bump records an invalidation of each key.
func (g *Generations) Bump(keys ...string) {
	for _, key := range keys {
		g.keys.Compute(key, func(old uint64, _ bool) (uint64, bool) {
			return old + 1, false
		})
	}
}

// BumpAll records an invalidation of every key.
func (g *Generations) BumpAll() {
	g.sweep.Add(1)
}
