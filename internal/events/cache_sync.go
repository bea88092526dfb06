package events

import (
	"context"

	"sky-catalog/internal/cache"

	"github.com/rs/zerolog"
)

// CacheSync applies catalog events published by other instances to the local
// cache. Events carrying this instance's source id were already applied when
// the write committed.
type CacheSync struct {
	sub         Subscriber
	invalidator *cache.Invalidator
	source      string
	logger      zerolog.Logger
}

// NewCacheSync creates a CacheSync for the instance identified by source.
func NewCacheSync(sub Subscriber, invalidator *cache.Invalidator, source string, logger zerolog.Logger) *CacheSync {
	return &CacheSync{
		sub:         sub,
		invalidator: invalidator,
		source:      source,
		logger:      logger.With().Str("component", "cache_sync").Logger(),
	}
}

// Start subscribes to every dish event until ctx ends.
func (s *CacheSync) Start(ctx context.Context) error {
	return s.sub.Subscribe(ctx, AllDishEvents, func(event DishEvent) error {
		s.Apply(ctx, event)
		return nil
	})
}

// Apply invalidates the categories named by a remote event.
func (s *CacheSync) Apply(ctx context.Context, event DishEvent) {
	if event.Source == s.source {
		return
	}

	outcome := s.invalidator.Invalidate(ctx, event.CategoryIDs...)
	if outcome.Failed() {
		return
	}

	s.logger.Debug().
		Str("type", string(event.Type)).
		Str("source", event.Source).
		Ints64("category_ids", event.CategoryIDs).
		Msg("applied remote catalog event")
}
