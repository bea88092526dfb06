package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"sky-catalog/internal/cache"
	"sky-catalog/internal/events"
	"sky-catalog/internal/model"
	"sky-catalog/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// dishService implements DishService.
type dishService struct {
	dishRepo    repository.DishRepository
	flavorRepo  repository.FlavorRepository
	guard       *DeletionGuard
	invalidator *cache.Invalidator
	publisher   events.Publisher
	source      string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewDishService creates a new dish service. source identifies this instance
// on published events.
func NewDishService(
	dishRepo repository.DishRepository,
	flavorRepo repository.FlavorRepository,
	guard *DeletionGuard,
	invalidator *cache.Invalidator,
	publisher events.Publisher,
	source string,
	logger zerolog.Logger,
) DishService {
	return &dishService{
		dishRepo:    dishRepo,
		flavorRepo:  flavorRepo,
		guard:       guard,
		invalidator: invalidator,
		publisher:   publisher,
		source:      source,
		now:         time.Now,
		logger:      logger.With().Str("service", "dish").Logger(),
	}
}

// CreateWithFlavors stores a new dish and its flavors in one transaction.
func (s *dishService) CreateWithFlavors(ctx context.Context, req *model.DishRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid create request")
		return 0, err
	}

	dish := model.DishFromRequest(req, model.ActorFromContext(ctx), s.now())
	dish.ID = 0

	var id int64
	err := repository.RunInTx(ctx, s.dishRepo, s.logger, func(tx pgx.Tx) error {
		var err error
		id, err = s.dishRepo.Insert(ctx, tx, &dish)
		if err != nil {
			return fmt.Errorf("failed to create dish: %w", err)
		}

		if len(req.Flavors) == 0 {
			return nil
		}
		flavors := model.FlavorsFromRequest(req.Flavors, id)
		if err := s.flavorRepo.InsertBatch(ctx, tx, flavors); err != nil {
			return fmt.Errorf("failed to create dish flavors: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create dish")
		return 0, err
	}

	s.logger.Info().
		Int64("dish_id", id).
		Int64("category_id", dish.CategoryID).
		Int("flavor_count", len(req.Flavors)).
		Msg("dish created")

	s.afterCommit(ctx, events.DishCreated, []int64{id}, []int64{dish.CategoryID})

	return id, nil
}

// UpdateWithFlavors replaces the dish fields and its whole flavor list.
func (s *dishService) UpdateWithFlavors(ctx context.Context, req *model.DishRequest) error {
	if err := validateRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid update request")
		return err
	}
	if req.ID <= 0 {
		return model.InvalidRequest(errors.New("id: cannot be blank"))
	}

	dish := model.DishFromRequest(req, model.ActorFromContext(ctx), s.now())

	var previousCategory int64
	err := repository.RunInTx(ctx, s.dishRepo, s.logger, func(tx pgx.Tx) error {
		existing, err := s.dishRepo.GetForUpdate(ctx, tx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to update dish: %w", err)
		}
		if existing == nil {
			return model.ErrDishNotFound.WithIDs(req.ID)
		}
		previousCategory = existing.CategoryID

		updated, err := s.dishRepo.Update(ctx, tx, &dish)
		if err != nil {
			return fmt.Errorf("failed to update dish: %w", err)
		}
		if !updated {
			return model.ErrDishNotFound.WithIDs(req.ID)
		}

		if _, err := s.flavorRepo.DeleteByDishIDs(ctx, tx, []int64{req.ID}); err != nil {
			return fmt.Errorf("failed to replace dish flavors: %w", err)
		}
		if len(req.Flavors) == 0 {
			return nil
		}
		if err := s.flavorRepo.InsertBatch(ctx, tx, model.FlavorsFromRequest(req.Flavors, req.ID)); err != nil {
			return fmt.Errorf("failed to replace dish flavors: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logEnd(err, "failed to update dish", req.ID)
		return err
	}

	categories := []int64{dish.CategoryID}
	if previousCategory != dish.CategoryID {
		categories = append(categories, previousCategory)
	}

	s.logger.Info().
		Int64("dish_id", req.ID).
		Ints64("category_ids", categories).
		Int("flavor_count", len(req.Flavors)).
		Msg("dish updated")

	s.afterCommit(ctx, events.DishUpdated, []int64{req.ID}, categories)

	return nil
}

// DeleteBatch deletes the dishes and all of their flavors once the guard accepts the batch.
func (s *dishService) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return model.ErrEmptyIDs
	}
	ids = distinct(ids)

	var deleted []model.Dish
	err := repository.RunInTx(ctx, s.dishRepo, s.logger, func(tx pgx.Tx) error {
		dishes, err := s.guard.ValidateDeletable(ctx, tx, ids)
		if err != nil {
			return err
		}
		deleted = dishes

		if _, err := s.dishRepo.DeleteByIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete dishes: %w", err)
		}
		if _, err := s.flavorRepo.DeleteByDishIDs(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete dish flavors: %w", err)
		}
		return nil
	})
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn().Err(err).Ints64("dish_ids", ids).Msg("dish deletion rejected")
		} else {
			s.logger.Error().Err(err).Ints64("dish_ids", ids).Msg("failed to delete dishes")
		}
		return err
	}

	categories := model.CategoryIDs(deleted)

	s.logger.Info().
		Ints64("dish_ids", ids).
		Ints64("category_ids", categories).
		Msg("dishes deleted")

	s.afterCommit(ctx, events.DishDeleted, ids, categories)

	return nil
}

// SetStatus starts or stops selling a dish.
func (s *dishService) SetStatus(ctx context.Context, id int64, status model.DishStatus) error {
	if !status.Valid() {
		return model.ErrInvalidStatus
	}

	var categoryID int64
	err := repository.RunInTx(ctx, s.dishRepo, s.logger, func(tx pgx.Tx) error {
		existing, err := s.dishRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to change dish status: %w", err)
		}
		if existing == nil {
			return model.ErrDishNotFound.WithIDs(id)
		}
		categoryID = existing.CategoryID

		if _, err := s.dishRepo.UpdateStatus(ctx, tx, id, status, model.ActorFromContext(ctx)); err != nil {
			return fmt.Errorf("failed to change dish status: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logEnd(err, "failed to change dish status", id)
		return err
	}

	s.logger.Info().
		Int64("dish_id", id).
		Str("status", status.String()).
		Msg("dish status changed")

	s.afterCommit(ctx, events.DishStatusChanged, []int64{id}, []int64{categoryID})

	return nil
}

// GetByID retrieves a dish with its flavors.
func (s *dishService) GetByID(ctx context.Context, id int64) (*model.DishView, error) {
	dish, err := s.dishRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("dish_id", id).Msg("failed to get dish by ID")
		return nil, fmt.Errorf("failed to get dish: %w", err)
	}
	if dish == nil {
		s.logger.Debug().Int64("dish_id", id).Msg("dish not found")
		return nil, model.ErrDishNotFound.WithIDs(id)
	}

	flavors, err := s.flavorRepo.ListByDishID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("dish_id", id).Msg("failed to get dish flavors")
		return nil, fmt.Errorf("failed to get dish flavors: %w", err)
	}

	view := model.NewDishView(*dish, flavors)
	return &view, nil
}

// PageQuery returns one filtered page of dishes.
func (s *dishService) PageQuery(ctx context.Context, query model.DishPageQuery) (model.PageResult[model.DishPageItem], error) {
	if query.Page <= 0 || query.PageSize <= 0 {
		return model.PageResult[model.DishPageItem]{}, model.ErrInvalidPage
	}
	// Offset must fit in an int.
	if query.Page-1 > math.MaxInt/query.PageSize {
		return model.PageResult[model.DishPageItem]{}, model.ErrInvalidPage
	}
	if query.Status != nil && !query.Status.Valid() {
		return model.PageResult[model.DishPageItem]{}, model.ErrInvalidStatus
	}

	page, err := s.dishRepo.PageQuery(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", query.Page).
			Int("page_size", query.PageSize).
			Msg("failed to page dishes")
		return model.PageResult[model.DishPageItem]{}, fmt.Errorf("failed to page dishes: %w", err)
	}

	s.logger.Debug().
		Int64("total", page.Total).
		Int("count", len(page.Records)).
		Msg("dish page retrieved")

	return page, nil
}

// ListByCategory returns the on-sale dishes of a category.
func (s *dishService) ListByCategory(ctx context.Context, categoryID int64) ([]model.Dish, error) {
	dishes, err := s.dishRepo.ListByCategory(ctx, categoryID, model.StatusOnSale)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to list dishes")
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

// afterCommit invalidates the touched categories and announces the change.
// Both steps are best effort: the write has already committed.
func (s *dishService) afterCommit(ctx context.Context, kind events.EventType, dishIDs, categoryIDs []int64) {
	s.invalidator.Invalidate(ctx, categoryIDs...)

	event := events.DishEvent{
		Type:        kind,
		DishIDs:     dishIDs,
		CategoryIDs: categoryIDs,
		Source:      s.source,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", string(kind)).Msg("failed to publish catalog event")
	}
}

// logEnd logs a failed mutation at a level matching the failure kind.
func (s *dishService) logEnd(err error, msg string, id int64) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		s.logger.Warn().Err(err).Int64("dish_id", id).Msg(msg)
		return
	}
	s.logger.Error().Err(err).Int64("dish_id", id).Msg(msg)
}

func validateRequest(req *model.DishRequest) error {
	if req == nil {
		return model.InvalidRequest(errors.New("request body is required"))
	}
	if err := req.Validate(); err != nil {
		return model.InvalidRequest(err)
	}
	return nil
}

// distinct drops repeated ids, keeping first-seen order.
func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
