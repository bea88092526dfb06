package repository

import (
	"context"
	"fmt"

	"sky-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// flavorRepository implements the FlavorRepository interface using PostgreSQL.
type flavorRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFlavorRepository creates a new PostgreSQL-backed flavor repository.
func NewFlavorRepository(pool *pgxpool.Pool, logger zerolog.Logger) FlavorRepository {
	return &flavorRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dish_flavor").Logger(),
	}
}

// InsertBatch stores the flavors in one round trip.
func (r *flavorRepository) InsertBatch(ctx context.Context, tx pgx.Tx, flavors []model.DishFlavor) error {
	if len(flavors) == 0 {
		return nil
	}

	query := `
		INSERT INTO dish_flavor (dish_id, name, value)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, f := range flavors {
		values := f.Values
		if values == nil {
			values = []string{}
		}
		batch.Queue(query, f.DishID, f.Name, values)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range flavors {
		if err := results.QueryRow().Scan(&flavors[i].ID); err != nil {
			r.logger.Error().
				Err(err).
				Int64("dish_id", flavors[i].DishID).
				Str("flavor", flavors[i].Name).
				Msg("failed to insert dish flavor")
			return fmt.Errorf("failed to insert dish flavor: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(flavors)).
		Msg("dish flavors inserted")

	return nil
}

// DeleteByDishIDs removes all flavors of the given dishes.
func (r *flavorRepository) DeleteByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) (int64, error) {
	if len(dishIDs) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM dish_flavor WHERE dish_id = ANY($1)`, dishIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(dishIDs)).Msg("failed to delete dish flavors")
		return 0, fmt.Errorf("failed to delete dish flavors: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByDishID returns the flavors of one dish.
func (r *flavorRepository) ListByDishID(ctx context.Context, dishID int64) ([]model.DishFlavor, error) {
	grouped, err := r.ListByDishIDs(ctx, []int64{dishID})
	if err != nil {
		return nil, err
	}
	if flavors, ok := grouped[dishID]; ok {
		return flavors, nil
	}
	return []model.DishFlavor{}, nil
}

// ListByDishIDs returns the flavors of many dishes, each list in insertion order.
func (r *flavorRepository) ListByDishIDs(ctx context.Context, dishIDs []int64) (map[int64][]model.DishFlavor, error) {
	grouped := make(map[int64][]model.DishFlavor, len(dishIDs))
	if len(dishIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT id, dish_id, name, value
		FROM dish_flavor
		WHERE dish_id = ANY($1)
		ORDER BY dish_id, id
	`

	rows, err := r.pool.Query(ctx, query, dishIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(dishIDs)).Msg("failed to query dish flavors")
		return nil, fmt.Errorf("failed to query dish flavors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.DishFlavor
		if err := rows.Scan(&f.ID, &f.DishID, &f.Name, &f.Values); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan dish flavor row")
			return nil, fmt.Errorf("failed to scan dish flavor: %w", err)
		}
		grouped[f.DishID] = append(grouped[f.DishID], f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating dish flavor rows")
		return nil, fmt.Errorf("error iterating dish flavors: %w", err)
	}

	return grouped, nil
}
