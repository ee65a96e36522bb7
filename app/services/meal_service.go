package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// MealService is the meal catalog.
type MealService struct {
	meals repositories.MealRepository
}

func NewMealService(meals repositories.MealRepository) *MealService {
	return &MealService{meals: meals}
}

// Search returns page (zero-based) of the matching meals, in insertion order.
func (s *MealService) Search(ctx context.Context, page, limit int, search string) ([]models.Meal, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if int64(page) > math.MaxInt64/int64(limit) {
		// Past any reachable offset.
		return []models.Meal{}, nil
	}
	meals, err := s.meals.Search(ctx, repositories.MealQuery{
		Search: search,
		Skip:   int64(page) * int64(limit),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search meals: %w", err)
	}
	return meals, nil
}

// Count uses the same filter as Search.
func (s *MealService) Count(ctx context.Context, search string) (int64, error) {
	n, err := s.meals.Count(ctx, search)
	if err != nil {
		return 0, fmt.Errorf("count meals: %w", err)
	}
	return n, nil
}

func (s *MealService) Get(ctx context.Context, id string) (*models.Meal, error) {
	m, err := s.meals.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("meal")
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return m, nil
}

func (s *MealService) ListByChef(ctx context.Context, email string) ([]models.Meal, error) {
	meals, err := s.meals.ByChef(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list chef meals: %w", err)
	}
	return meals, nil
}

// Create stores a new meal from a raw document. Aggregates start at zero.
// Any authenticated caller may name any chefEmail; this is not checked.
func (s *MealService) Create(ctx context.Context, caller string, raw bson.M) (string, error) {
	delete(raw, "_id")
	if err := models.CheckPrice(raw["price"]); err != nil {
		return "", invalid("price must be a finite number")
	}
	m := models.NormalizeMeal(raw)
	m.Rating, m.ReviewsCount, m.Likes = 0, 0, 0
	if m.ChefEmail == "" {
		m.ChefEmail = caller
	}
	if m.Price < 0 {
		return "", invalid("price must not be negative")
	}

	log := logger.WithCtx(ctx)
	if m.ChefEmail != caller {
		log.Warn("meal created for another chef", "chef_email", m.ChefEmail)
	}

	id, err := s.meals.Insert(ctx, m)
	if err != nil {
		return "", fmt.Errorf("create meal: %w", err)
	}
	log.Info("meal created", "meal_id", id, "chef_email", m.ChefEmail)
	return id, nil
}

// Update changes the allow-listed fields that are present in p.
func (s *MealService) Update(ctx context.Context, id string, p models.MealPatch) (repositories.UpdateResult, error) {
	if len(p.Set()) == 0 {
		return repositories.UpdateResult{}, invalid("nothing to update")
	}
	if p.Price != nil && !p.Price.Valid() {
		return repositories.UpdateResult{}, invalid("price must be a finite, non-negative number")
	}
	res, err := s.meals.Update(ctx, id, p)
	if err != nil {
		return res, fmt.Errorf("update meal: %w", err)
	}
	if res.MatchedCount == 0 {
		return res, notFound("meal")
	}
	return res, nil
}

// Delete is idempotent: an unknown id deletes nothing and succeeds.
func (s *MealService) Delete(ctx context.Context, id string) (repositories.DeleteResult, error) {
	res, err := s.meals.Delete(ctx, id)
	if err != nil {
		return res, fmt.Errorf("delete meal: %w", err)
	}
	if res.DeletedCount > 0 {
		logger.WithCtx(ctx).Info("meal deleted", "meal_id", id)
	}
	return res, nil
}
