package service

import (
	"context"
	"fmt"

	"sky-catalog/internal/model"
	"sky-catalog/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DeletionGuard decides whether a batch of dishes may be deleted. It runs on
// the deleting transaction and locks the rows it checks, so the verdict holds
// for the rows that are then deleted.
type DeletionGuard struct {
	dishRepo  repository.DishRepository
	comboRepo repository.ComboRepository
	logger    zerolog.Logger
}

// NewDeletionGuard creates a new deletion guard.
func NewDeletionGuard(dishRepo repository.DishRepository, comboRepo repository.ComboRepository, logger zerolog.Logger) *DeletionGuard {
	return &DeletionGuard{
		dishRepo:  dishRepo,
		comboRepo: comboRepo,
		logger:    logger.With().Str("component", "deletion_guard").Logger(),
	}
}

// ValidateDeletable returns the dishes named by ids when none of them is on
// sale, all of them exist and none is part of a combo meal. Checks run in that
// order and the first failing check rejects the whole batch. It never writes.
func (g *DeletionGuard) ValidateDeletable(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Dish, error) {
	if len(ids) == 0 {
		return nil, model.ErrEmptyIDs
	}

	dishes, err := g.dishRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load dishes for deletion: %w", err)
	}

	found := make(map[int64]struct{}, len(dishes))
	var onSale []int64
	for _, d := range dishes {
		found[d.ID] = struct{}{}
		if d.Status == model.StatusOnSale {
			onSale = append(onSale, d.ID)
		}
	}

	if len(onSale) > 0 {
		g.logger.Warn().Ints64("dish_ids", onSale).Msg("deletion rejected: dish on sale")
		return nil, model.ErrDishOnSale.WithIDs(onSale...)
	}

	if missing := missingIDs(ids, found); len(missing) > 0 {
		g.logger.Warn().Ints64("dish_ids", missing).Msg("deletion rejected: dish not found")
		return nil, model.ErrDishNotFound.WithIDs(missing...)
	}

	combos, err := g.comboRepo.ComboIDsByDishIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check combo membership: %w", err)
	}
	if len(combos) > 0 {
		g.logger.Warn().Ints64("combo_ids", combos).Msg("deletion rejected: dish in combo")
		return nil, model.ErrDishInCombo
	}

	return dishes, nil
}

// missingIDs lists the requested ids absent from found, once each, in request order.
func missingIDs(ids []int64, found map[int64]struct{}) []int64 {
	var missing []int64
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
