package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Policy selects how category entries are invalidated after a write.
type Policy string

const (
	// PolicyTargeted deletes exactly the keys of the touched categories.
	PolicyTargeted Policy = "targeted"
	// PolicySweep deletes every dish list entry regardless of category.
	PolicySweep Policy = "sweep"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyTargeted, PolicySweep:
		return Policy(raw), nil
	default:
		return "", fmt.Errorf("unknown invalidation policy %q", raw)
	}
}

// Invalidator removes stale dish list entries. Callers run it only after the
// write they are invalidating for has committed.
type Invalidator struct {
	cache       Cache
	policy      Policy
	generations *Generations
	secondDelay time.Duration
	pending     sync.WaitGroup
	logger      zerolog.Logger
}

// Option configures an Invalidator.
type Option func(*Invalidator)

// WithGenerations shares g with the readers that repopulate the cache.
func WithGenerations(g *Generations) Option {
	return func(i *Invalidator) {
		i.generations = g
	}
}

// WithSecondDelete repeats every invalidation after delay. It removes entries
// written by loads that read the store before the commit but finished after
// the first delete, including loads running in other processes.
func WithSecondDelete(delay time.Duration) Option {
	return func(i *Invalidator) {
		i.secondDelay = delay
	}
}

// NewInvalidator creates an invalidator applying policy to c.
func NewInvalidator(c Cache, policy Policy, logger zerolog.Logger, opts ...Option) *Invalidator {
	i := &Invalidator{
		cache:  c,
		policy: policy,
		logger: logger.With().Str("component", "cache_invalidator").Str("policy", string(policy)).Logger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.generations == nil {
		i.generations = NewGenerations()
	}
	return i
}

// Policy returns the configured policy.
func (i *Invalidator) Policy() Policy {
	return i.policy
}

// Generations returns the registry bumped by every invalidation.
func (i *Invalidator) Generations() *Generations {
	return i.generations
}

// Invalidate drops the entries of the given categories. Under the sweep policy
// the category list only feeds the log line. Failures are logged and returned,
// never retried; the TTL bounds how long a missed invalidation can be served.
func (i *Invalidator) Invalidate(ctx context.Context, categoryIDs ...int64) Outcome {
	keys := categoryKeys(categoryIDs)
	if i.policy != PolicySweep && len(keys) == 0 {
		return Outcome{}
	}

	// Bump before deleting so a load that checks after the delete sees it.
	if i.policy == PolicySweep {
		i.generations.BumpAll()
	} else {
		i.generations.Bump(keys...)
	}

	outcome := i.remove(ctx, keys)
	if outcome.Failed() {
		i.logger.Warn().
			Err(outcome.Err).
			Ints64("category_ids", categoryIDs).
			Msg("cache invalidation failed")
	} else {
		i.logger.Debug().
			Ints64("category_ids", categoryIDs).
			Int64("deleted", outcome.Deleted).
			Msg("cache invalidated")
	}

	if i.secondDelay > 0 {
		i.scheduleSecondDelete(context.WithoutCancel(ctx), keys, categoryIDs)
	}

	return outcome
}

// Wait blocks until every scheduled second delete has run.
func (i *Invalidator) Wait() {
	i.pending.Wait()
}

func (i *Invalidator) remove(ctx context.Context, keys []string) Outcome {
	if i.policy == PolicySweep {
		return i.cache.DeleteByPrefix(ctx, DishKeyPrefix)
	}
	return i.cache.Delete(ctx, keys...)
}

func (i *Invalidator) scheduleSecondDelete(ctx context.Context, keys []string, categoryIDs []int64) {
	i.pending.Add(1)
	time.AfterFunc(i.secondDelay, func() {
		defer i.pending.Done()

		if outcome := i.remove(ctx, keys); outcome.Failed() {
			i.logger.Warn().
				Err(outcome.Err).
				Ints64("category_ids", categoryIDs).
				Msg("delayed cache invalidation failed")
		}
	})
}

func categoryKeys(categoryIDs []int64) []string {
	seen := make(map[int64]struct{}, len(categoryIDs))
	keys := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, DishKey(id))
	}
	return keys
}
