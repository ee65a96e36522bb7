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

type MongoPaymentRepository struct {
	col *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{col: db.Collection(PaymentsCollection)}
}

func (r *MongoPaymentRepository) Insert(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	defer metrics.ObserveStoreOp(PaymentsCollection, "insert", time.Now())

	p.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert payment: %w", err)
	}
	return p.ID, nil
}

func (r *MongoPaymentRepository) ByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	return r.findMany(ctx, bson.M{"email": email})
}

func (r *MongoPaymentRepository) All(ctx context.Context) ([]models.Payment, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *MongoPaymentRepository) findMany(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	defer metrics.ObserveStoreOp(PaymentsCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	payments := []models.Payment{}
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return payments, nil
}
