package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sky-catalog/internal/cache"
	"sky-catalog/internal/model"
	"sky-catalog/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// menuService implements MenuService as a read-through cache over the store.
type menuService struct {
	dishRepo    repository.DishRepository
	flavorRepo  repository.FlavorRepository
	cache       cache.Cache
	generations *cache.Generations
	ttl         time.Duration
	group       singleflight.Group
	logger      zerolog.Logger
}

// NewMenuService creates a new customer menu service caching lists for ttl.
// generations must be the registry of the invalidator serving the same cache.
func NewMenuService(
	dishRepo repository.DishRepository,
	flavorRepo repository.FlavorRepository,
	c cache.Cache,
	generations *cache.Generations,
	ttl time.Duration,
	logger zerolog.Logger,
) MenuService {
	return &menuService{
		dishRepo:    dishRepo,
		flavorRepo:  flavorRepo,
		cache:       c,
		generations: generations,
		ttl:         ttl,
		logger:      logger.With().Str("service", "menu").Logger(),
	}
}

// ListForCustomer serves from the cache when possible. A cache failure or an
// undecodable entry is treated as a miss. Concurrent misses on one category
// share a single store load; a miss arriving after an invalidation never joins
// a load started before it. Callers must not modify the returned slice.
func (s *menuService) ListForCustomer(ctx context.Context, categoryID int64) ([]model.DishView, error) {
	key := cache.DishKey(categoryID)

	lookup := s.cache.Get(ctx, key)
	switch lookup.State {
	case cache.Hit:
		var views []model.DishView
		err := json.Unmarshal(lookup.Value, &views)
		if err == nil {
			s.logger.Debug().Str("key", key).Msg("cache hit")
			return views, nil
		}
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
	case cache.Failed:
		s.logger.Warn().Err(lookup.Err).Str("key", key).Msg("cache read failed, falling back to store")
	case cache.Miss:
		s.logger.Debug().Str("key", key).Msg("cache miss")
	}

	gen := s.generations.Current(key)
	v, err, _ := s.group.Do(key+"@"+gen.String(), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), categoryID, key, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.DishView), nil
}

// load reads the category from the store and repopulates the cache unless
// the key was invalidated after gen was taken.
func (s *menuService) load(ctx context.Context, categoryID int64, key string, gen cache.Generation) ([]model.DishView, error) {
	dishes, err := s.dishRepo.ListByCategory(ctx, categoryID, model.StatusOnSale)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to load menu")
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	ids := make([]int64, len(dishes))
	for i, d := range dishes {
		ids[i] = d.ID
	}

	flavors, err := s.flavorRepo.ListByDishIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to load menu flavors")
		return nil, fmt.Errorf("failed to load menu flavors: %w", err)
	}

	views := make([]model.DishView, len(dishes))
	for i, d := range dishes {
		views[i] = model.NewDishView(d, flavors[d.ID])
	}

	data, err := json.Marshal(views)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode menu for cache")
		return views, nil
	}
	if !s.generations.Unchanged(key, gen) {
		s.logger.Debug().Str("key", key).Msg("skipping cache write, invalidated during load")
		return views, nil
	}
	if outcome := s.cache.Set(ctx, key, data, s.ttl); outcome.Failed() {
		s.logger.Warn().Err(outcome.Err).Str("key", key).Msg("cache write failed")
		return views, nil
	}

	// An invalidation between the check and the write may have deleted
	// before our Set landed.
	if !s.generations.Unchanged(key, gen) {
		if outcome := s.cache.Delete(ctx, key); outcome.Failed() {
			s.logger.Warn().Err(outcome.Err).Str("key", key).Msg("failed to drop cache write raced by invalidation")
		}
	}

	return views, nil
}
