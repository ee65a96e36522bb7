package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

// MongoMealRepository stores meals as loose documents and normalizes them
// on the way out.
type MongoMealRepository struct {
	col *mongo.Collection
}

func NewMongoMealRepository(db *mongo.Database) *MongoMealRepository {
	return &MongoMealRepository{col: db.Collection(MealsCollection)}
}

// mealSearchFilter ORs a case-insensitive substring match over the title
// aliases and category. The text is matched literally, not as a pattern.
func mealSearchFilter(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	or := bson.A{}
	for _, k := range models.TitleAliases {
		or = append(or, bson.M{k: re})
	}
	or = append(or, bson.M{"category": re})
	return bson.M{"$or": or}
}

func (r *MongoMealRepository) Search(ctx context.Context, q MealQuery) ([]models.Meal, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return r.findMany(ctx, mealSearchFilter(q.Search), opts)
}

func (r *MongoMealRepository) Count(ctx context.Context, search string) (int64, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "count", time.Now())

	n, err := r.col.CountDocuments(ctx, mealSearchFilter(search))
	if err != nil {
		return 0, fmt.Errorf("count meals: %w", err)
	}
	return n, nil
}

func (r *MongoMealRepository) Find(ctx context.Context, id string) (*models.Meal, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "find_one", time.Now())

	for _, f := range mealLookupFilters(id) {
		var raw bson.M
		err := r.col.FindOne(ctx, f).Decode(&raw)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find meal %q: %w", id, err)
		}
		m := models.NormalizeMeal(raw)
		return &m, nil
	}
	return nil, ErrNotFound
}

func (r *MongoMealRepository) ByChef(ctx context.Context, email string) ([]models.Meal, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "find", time.Now())

	or := bson.A{}
	for _, k := range models.ChefAliases {
		or = append(or, bson.M{k: email})
	}
	return r.findMany(ctx, bson.M{"$or": or}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *MongoMealRepository) Insert(ctx context.Context, m models.Meal) (string, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "insert", time.Now())

	oid := primitive.NewObjectID()
	doc := m.Document()
	doc["_id"] = oid
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert meal: %w", err)
	}
	return oid.Hex(), nil
}

func (r *MongoMealRepository) Update(ctx context.Context, id string, p models.MealPatch) (UpdateResult, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "update", time.Now())

	return r.updateResolved(ctx, id, bson.M{"$set": p.Set()})
}

func (r *MongoMealRepository) ApplyRatingStats(ctx context.Context, id string, s models.RatingStats) (UpdateResult, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "update", time.Now())

	return r.updateResolved(ctx, id, bson.M{
		"$set": bson.M{"rating": s.Average, "reviews_count": s.Count},
		"$inc": bson.M{"likes": 1},
	})
}

func (r *MongoMealRepository) Delete(ctx context.Context, id string) (DeleteResult, error) {
	defer metrics.ObserveStoreOp(MealsCollection, "delete", time.Now())

	key, err := r.resolve(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return DeleteResult{}, nil
	}
	if err != nil {
		return DeleteResult{}, err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete meal %q: %w", id, err)
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

func (r *MongoMealRepository) updateResolved(ctx context.Context, id string, update bson.M) (UpdateResult, error) {
	key, err := r.resolve(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return UpdateResult{}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": key}, update)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update meal %q: %w", id, err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// resolve returns the stored _id value for id.
func (r *MongoMealRepository) resolve(ctx context.Context, id string) (any, error) {
	proj := options.FindOne().SetProjection(bson.M{"_id": 1})
	for _, f := range mealLookupFilters(id) {
		var doc bson.M
		err := r.col.FindOne(ctx, f, proj).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve meal %q: %w", id, err)
		}
		return doc["_id"], nil
	}
	return nil, ErrNotFound
}

func (r *MongoMealRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Meal, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find meals: %w", err)
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode meals: %w", err)
	}
	meals := make([]models.Meal, 0, len(raws))
	for _, raw := range raws {
		meals = append(meals, models.NormalizeMeal(raw))
	}
	return meals, nil
}
