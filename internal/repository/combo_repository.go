package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// comboRepository reads combo-meal membership from the setmeal_dish table.
type comboRepository struct {
	logger zerolog.Logger
}

// NewComboRepository creates a new PostgreSQL-backed combo membership lookup.
// Lookups always run on the caller's transaction.
func NewComboRepository(logger zerolog.Logger) ComboRepository {
	return &comboRepository{
		logger: logger.With().Str("repository", "setmeal_dish").Logger(),
	}
}

// ComboIDsByDishIDs returns the distinct combos referencing any of the dishes.
func (r *comboRepository) ComboIDsByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) ([]int64, error) {
	if len(dishIDs) == 0 {
		return []int64{}, nil
	}

	query := `
		SELECT DISTINCT setmeal_id
		FROM setmeal_dish
		WHERE dish_id = ANY($1)
		ORDER BY setmeal_id
	`

	rows, err := tx.Query(ctx, query, dishIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(dishIDs)).Msg("failed to query combo membership")
		return nil, fmt.Errorf("failed to query combo membership: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan combo membership")
		return nil, fmt.Errorf("failed to scan combo membership: %w", err)
	}

	return ids, nil
}
