package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

type MongoReviewRepository struct {
	col *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{col: db.Collection(ReviewsCollection)}
}

func (r *MongoReviewRepository) Insert(ctx context.Context, rv *models.Review) (primitive.ObjectID, error) {
	defer metrics.ObserveStoreOp(ReviewsCollection, "insert", time.Now())

	rv.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, rv); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert review: %w", err)
	}
	return rv.ID, nil
}

func (r *MongoReviewRepository) List(ctx context.Context, email string) ([]models.Review, error) {
	defer metrics.ObserveStoreOp(ReviewsCollection, "find", time.Now())

	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// RatingStats recomputes the mean and count over every review of the meal.
func (r *MongoReviewRepository) RatingStats(ctx context.Context, mealID string) (models.RatingStats, error) {
	defer metrics.ObserveStoreOp(ReviewsCollection, "aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"mealId": mealID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, fmt.Errorf("aggregate reviews: %w", err)
	}
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.RatingStats{}, fmt.Errorf("decode review stats: %w", err)
	}
	if len(rows) == 0 {
		return models.RatingStats{}, nil
	}
	return models.RatingStats{Average: rows[0].Avg, Count: rows[0].Count}, nil
}
