package service

import (
	"context"
	"fmt"

	"sky-catalog/internal/cache"
	"sky-catalog/internal/model"

	"github.com/rs/zerolog"
)

type shopService struct {
	store  cache.ShopStore
	logger zerolog.Logger
}

// NewShopService creates a new shop status service.
func NewShopService(store cache.ShopStore, logger zerolog.Logger) ShopService {
	return &shopService{
		store:  store,
		logger: logger.With().Str("service", "shop").Logger(),
	}
}

func (s *shopService) GetStatus(ctx context.Context) (model.ShopStatus, error) {
	status, err := s.store.GetStatus(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read shop status")
		return model.ShopClosed, fmt.Errorf("failed to read shop status: %w", err)
	}
	return status, nil
}

func (s *shopService) SetStatus(ctx context.Context, status model.ShopStatus) error {
	if !status.Valid() {
		return model.ErrInvalidStatus
	}
	if err := s.store.SetStatus(ctx, status); err != nil {
		s.logger.Error().Err(err).Str("status", status.String()).Msg("failed to update shop status")
		return fmt.Errorf("failed to update shop status: %w", err)
	}
	s.logger.Info().Str("status", status.String()).Msg("shop status updated")
	return nil
}
