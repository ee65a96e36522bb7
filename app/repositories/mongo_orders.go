package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(OrdersCollection)}
}

func (r *MongoOrderRepository) Insert(ctx context.Context, o *models.Order) (primitive.ObjectID, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "insert", time.Now())

	o.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert order: %w", err)
	}
	return o.ID, nil
}

func (r *MongoOrderRepository) Find(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "find_one", time.Now())

	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *MongoOrderRepository) ByBuyer(ctx context.Context, email string) ([]models.Order, error) {
	return r.findMany(ctx, bson.M{"userEmail": email}, bson.D{{Key: "_id", Value: 1}})
}

func (r *MongoOrderRepository) ByChef(ctx context.Context, email string) ([]models.Order, error) {
	filter := bson.M{"$or": bson.A{bson.M{"chefId": email}, bson.M{"chefEmail": email}}}
	return r.findMany(ctx, filter, bson.D{{Key: "orderTime", Value: -1}, {Key: "_id", Value: -1}})
}

func (r *MongoOrderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, unless []models.OrderStatus) (UpdateResult, error) {
	filter := bson.M{"_id": id}
	if len(unless) > 0 {
		filter["orderStatus"] = bson.M{"$nin": unless}
	}
	return r.update(ctx, filter, bson.M{"$set": bson.M{"orderStatus": status}})
}

func (r *MongoOrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID) (UpdateResult, error) {
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"orderStatus":   models.OrderPaid,
		"paymentStatus": string(models.OrderPaid),
	}})
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) (DeleteResult, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete order: %w", err)
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

func (r *MongoOrderRepository) update(ctx context.Context, filter, update bson.M) (UpdateResult, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "update", time.Now())

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update order: %w", err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *MongoOrderRepository) findMany(ctx context.Context, filter bson.M, sort bson.D) ([]models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
