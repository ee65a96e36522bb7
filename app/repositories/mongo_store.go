package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoStore wires every repository to db. With transactions enabled
// (replica sets only) multi-collection writes run in a session transaction.
func NewMongoStore(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	var tx Transactor = NoTx{}
	if transactions {
		tx = &MongoTransactor{client: client}
	}
	return &Store{
		Users:    NewMongoUserRepository(db),
		Meals:    NewMongoMealRepository(db),
		Orders:   NewMongoOrderRepository(db),
		Payments: NewMongoPaymentRepository(db),
		Reviews:  NewMongoReviewRepository(db),
		Tx:       tx,
	}
}

// MongoTransactor runs callbacks inside a client session transaction.
type MongoTransactor struct {
	client *mongo.Client
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		MealsCollection: {
			{Keys: bson.D{{Key: "chefEmail", Value: 1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}}},
			{Keys: bson.D{{Key: "chefId", Value: 1}}},
			{Keys: bson.D{{Key: "chefEmail", Value: 1}, {Key: "orderTime", Value: -1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "mealId", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		LogsCollection: {
			{Keys: bson.D{{Key: "time", Value: -1}}},
		},
	}

	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
