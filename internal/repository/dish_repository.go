package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sky-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const dishColumns = `d.id, d.name, d.category_id, d.price, d.image, d.description, d.status,
		d.create_time, d.update_time, d.create_user, d.update_user`

// dishRepository implements the DishRepository interface using PostgreSQL.
type dishRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDishRepository creates a new PostgreSQL-backed dish repository.
func NewDishRepository(pool *pgxpool.Pool, logger zerolog.Logger) DishRepository {
	return &dishRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dish").Logger(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDish(row rowScanner, extra ...any) (model.Dish, error) {
	var (
		d      model.Dish
		status int16
	)
	dest := []any{
		&d.ID, &d.Name, &d.CategoryID, &d.Price, &d.Image, &d.Description, &status,
		&d.CreatedAt, &d.UpdatedAt, &d.CreatedBy, &d.UpdatedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Dish{}, err
	}
	d.Status = model.DishStatus(status)
	return d, nil
}

func (r *dishRepository) collect(rows pgx.Rows) ([]model.Dish, error) {
	defer rows.Close()

	dishes := []model.Dish{}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan dish row")
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating dish rows")
		return nil, fmt.Errorf("error iterating dishes: %w", err)
	}

	return dishes, nil
}

// BeginTx starts a new database transaction.
func (r *dishRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Insert stores a new dish and returns its id.
func (r *dishRepository) Insert(ctx context.Context, tx pgx.Tx, dish *model.Dish) (int64, error) {
	query := `
		INSERT INTO dish (name, category_id, price, image, description, status,
			create_time, update_time, create_user, update_user)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query,
		dish.Name, dish.CategoryID, dish.Price, dish.Image, dish.Description, int16(dish.Status),
		dish.CreatedAt, dish.UpdatedAt, dish.CreatedBy, dish.UpdatedBy,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("name", dish.Name).Msg("failed to insert dish")
		return 0, fmt.Errorf("failed to insert dish: %w", err)
	}

	r.logger.Debug().Int64("dish_id", id).Msg("dish inserted")

	return id, nil
}

// Update overwrites the mutable fields of an existing dish.
func (r *dishRepository) Update(ctx context.Context, tx pgx.Tx, dish *model.Dish) (bool, error) {
	query := `
		UPDATE dish
		SET name = $2, category_id = $3, price = $4, image = $5, description = $6,
			status = $7, update_time = $8, update_user = $9
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		dish.ID, dish.Name, dish.CategoryID, dish.Price, dish.Image, dish.Description,
		int16(dish.Status), dish.UpdatedAt, dish.UpdatedBy,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("dish_id", dish.ID).Msg("failed to update dish")
		return false, fmt.Errorf("failed to update dish: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateStatus changes the sellability of a dish.
func (r *dishRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.DishStatus, actor int64) (bool, error) {
	query := `
		UPDATE dish
		SET status = $2, update_time = NOW(), update_user = $3
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, int16(status), actor)
	if err != nil {
		r.logger.Error().Err(err).Int64("dish_id", id).Msg("failed to update dish status")
		return false, fmt.Errorf("failed to update dish status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetForUpdate reads and locks a single dish.
func (r *dishRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dish d WHERE d.id = $1 FOR UPDATE`

	d, err := scanDish(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("dish_id", id).Msg("dish not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("dish_id", id).Msg("failed to lock dish")
		return nil, fmt.Errorf("failed to lock dish: %w", err)
	}

	return &d, nil
}

// GetByIDsForUpdate reads and locks the existing dishes among ids, ordered by id.
func (r *dishRepository) GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Dish, error) {
	if len(ids) == 0 {
		return []model.Dish{}, nil
	}

	query := `SELECT ` + dishColumns + ` FROM dish d WHERE d.id = ANY($1) ORDER BY d.id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock dishes by IDs")
		return nil, fmt.Errorf("failed to lock dishes by IDs: %w", err)
	}

	return r.collect(rows)
}

// DeleteByIDs removes the given dishes.
func (r *dishRepository) DeleteByIDs(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM dish WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete dishes")
		return 0, fmt.Errorf("failed to delete dishes: %w", err)
	}

	r.logger.Debug().Int64("deleted", tag.RowsAffected()).Msg("dishes deleted")

	return tag.RowsAffected(), nil
}

// GetByID retrieves a single dish.
func (r *dishRepository) GetByID(ctx context.Context, id int64) (*model.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dish d WHERE d.id = $1`

	d, err := scanDish(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("dish_id", id).Msg("dish not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("dish_id", id).Msg("failed to query dish")
		return nil, fmt.Errorf("failed to query dish: %w", err)
	}

	return &d, nil
}

// ListByCategory returns the dishes of a category with the given status, newest first.
func (r *dishRepository) ListByCategory(ctx context.Context, categoryID int64, status model.DishStatus) ([]model.Dish, error) {
	query := `
		SELECT ` + dishColumns + `
		FROM dish d
		WHERE d.category_id = $1 AND d.status = $2
		ORDER BY d.create_time DESC, d.id DESC
	`

	rows, err := r.pool.Query(ctx, query, categoryID, int16(status))
	if err != nil {
		r.logger.Error().Err(err).
			Int64("category_id", categoryID).
			Str("status", status.String()).
			Msg("failed to query dishes by category")
		return nil, fmt.Errorf("failed to query dishes by category: %w", err)
	}

	return r.collect(rows)
}

// PageQuery returns one page of dishes with their category names.
func (r *dishRepository) PageQuery(ctx context.Context, q model.DishPageQuery) (model.PageResult[model.DishPageItem], error) {
	where, args := pageFilter(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM dish d` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count dishes")
		return model.PageResult[model.DishPageItem]{}, fmt.Errorf("failed to count dishes: %w", err)
	}

	result := model.PageResult[model.DishPageItem]{Total: total, Records: []model.DishPageItem{}}
	if total == 0 {
		return result, nil
	}

	n := len(args)
	query := `
		SELECT ` + dishColumns + `, COALESCE(c.name, '')
		FROM dish d
		LEFT JOIN category c ON c.id = d.category_id` + where + `
		ORDER BY d.create_time DESC, d.id DESC
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	rows, err := r.pool.Query(ctx, query, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("page", q.Page).
			Int("page_size", q.PageSize).
			Msg("failed to query dish page")
		return model.PageResult[model.DishPageItem]{}, fmt.Errorf("failed to query dish page: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.DishPageItem
		d, err := scanDish(rows, &item.CategoryName)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan dish page row")
			return model.PageResult[model.DishPageItem]{}, fmt.Errorf("failed to scan dish: %w", err)
		}
		item.Dish = d
		result.Records = append(result.Records, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating dish page rows")
		return model.PageResult[model.DishPageItem]{}, fmt.Errorf("error iterating dishes: %w", err)
	}

	return result, nil
}

// pageFilter builds the WHERE clause shared by the count and page queries.
func pageFilter(q model.DishPageQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if name := strings.TrimSpace(q.Name); name != "" {
		args = append(args, name)
		conds = append(conds, "d.name ILIKE '%' || $"+strconv.Itoa(len(args))+" || '%'")
	}
	if q.CategoryID != nil {
		args = append(args, *q.CategoryID)
		conds = append(conds, "d.category_id = $"+strconv.Itoa(len(args)))
	}
	if q.Status != nil {
		args = append(args, int16(*q.Status))
		conds = append(conds, "d.status = $"+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
