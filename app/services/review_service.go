package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

// ReviewService stores reviews and keeps each meal's rating aggregate in
// step with them.
type ReviewService struct {
	reviews repositories.ReviewRepository
	meals   repositories.MealRepository
	now     func() time.Time
}

func NewReviewService(reviews repositories.ReviewRepository, meals repositories.MealRepository) *ReviewService {
	return &ReviewService{reviews: reviews, meals: meals, now: time.Now}
}

type ReviewInput struct {
	MealID        string    `json:"mealId" validate:"required"`
	MealTitle     string    `json:"mealTitle"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerImage string    `json:"reviewerImage"`
	Rating        float64   `json:"rating" validate:"gte=1,lte=5"`
	Text          string    `json:"text"`
	Date          time.Time `json:"date"`
}

// Submit stores the review under the caller's email, then recomputes the
// meal's rating and reviews_count from all of its reviews and bumps likes.
//
// likes is incremented on every review whatever the rating. That couples
// reviews to likes and is kept only because clients display it.
func (s *ReviewService) Submit(ctx context.Context, caller string, in ReviewInput) (InsertResult, error) {
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return InsertResult{}, invalid("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	meal, err := s.meals.Find(ctx, in.MealID)
	if errors.Is(err, repositories.ErrNotFound) {
		return InsertResult{}, notFound("meal")
	}
	if err != nil {
		return InsertResult{}, fmt.Errorf("submit review: %w", err)
	}

	rv := &models.Review{
		// Legacy ids resolve to the same meal; aggregate under one key.
		MealID:        meal.ID,
		MealTitle:     in.MealTitle,
		Email:         caller,
		ReviewerName:  in.ReviewerName,
		ReviewerImage: in.ReviewerImage,
		Rating:        in.Rating,
		Text:          in.Text,
		Date:          in.Date,
	}
	if rv.MealTitle == "" {
		rv.MealTitle = meal.Title
	}
	if rv.Date.IsZero() {
		rv.Date = s.now().UTC()
	}

	id, err := s.reviews.Insert(ctx, rv)
	if err != nil {
		return InsertResult{}, fmt.Errorf("insert review: %w", err)
	}

	log := logger.WithCtx(ctx)
	stats, err := s.reviews.RatingStats(ctx, meal.ID)
	if err != nil {
		log.Error("rating recompute failed", "meal_id", meal.ID, "error", err)
		return InsertResult{}, fmt.Errorf("recompute rating: %w", err)
	}
	if _, err := s.meals.ApplyRatingStats(ctx, meal.ID, stats); err != nil {
		log.Error("rating update failed", "meal_id", meal.ID, "error", err)
		return InsertResult{}, fmt.Errorf("update meal rating: %w", err)
	}

	metrics.ReviewsSubmitted.Inc()
	log.Info("review submitted", "meal_id", meal.ID, "rating", in.Rating, "reviews_count", stats.Count)
	return InsertResult{InsertedID: id.Hex()}, nil
}

// List returns reviews newest first, optionally only the given reviewer's.
func (s *ReviewService) List(ctx context.Context, email string) ([]models.Review, error) {
	reviews, err := s.reviews.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
