package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"sky-catalog/internal/model"

	"github.com/redis/go-redis/v9"
)

// ShopStatusKey holds the open/closed flag of the shop.
const ShopStatusKey = "SHOP_STATUS"

// ShopStore persists the shop open flag. Unlike dish list entries the stored
// value is authoritative, so failures are returned as errors.
type ShopStore interface {
	GetStatus(ctx context.Context) (model.ShopStatus, error)
	SetStatus(ctx context.Context, status model.ShopStatus) error
}

type redisShopStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedisShopStore keeps the shop flag in Redis without expiry. Each call is
// bounded by opTimeout.
func NewRedisShopStore(client *redis.Client, opTimeout time.Duration) ShopStore {
	return &redisShopStore{client: client, opTimeout: opTimeout}
}

// GetStatus returns ShopClosed when the flag has never been set. A stored value
// other than "0" or "1" is an error.
func (s *redisShopStore) GetStatus(ctx context.Context) (model.ShopStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, ShopStatusKey).Result()
	if errors.Is(err, redis.Nil) {
		return model.ShopClosed, nil
	}
	if err != nil {
		return model.ShopClosed, fmt.Errorf("failed to read shop status: %w", err)
	}

	status, err := model.ParseShopStatus(raw)
	if err != nil {
		return model.ShopClosed, fmt.Errorf("corrupt shop status: %w", err)
	}
	return status, nil
}

func (s *redisShopStore) SetStatus(ctx context.Context, status model.ShopStatus) error {
	if !status.Valid() {
		return fmt.Errorf("refusing to store shop status %s", status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, ShopStatusKey, strconv.Itoa(int(status)), 0).Err(); err != nil {
		return fmt.Errorf("failed to write shop status: %w", err)
	}
	return nil
}

// memoryShopStore keeps the flag in process, for the memory cache backend.
type memoryShopStore struct {
	mu     sync.RWMutex
	status model.ShopStatus
}

// NewMemoryShopStore returns a store starting closed.
func NewMemoryShopStore() ShopStore {
	return &memoryShopStore{status: model.ShopClosed}
}

func (s *memoryShopStore) GetStatus(context.Context) (model.ShopStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

func (s *memoryShopStore) SetStatus(_ context.Context, status model.ShopStatus) error {
	if !status.Valid() {
		return fmt.Errorf("refusing to store shop status %s", status)
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return nil
}
