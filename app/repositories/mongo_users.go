package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

// MongoUserRepository handles the users collection.
type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(UsersCollection)}
}

// All returns every user.
func (r *MongoUserRepository) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// FindByEmail looks up a user by their email address.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find_one", time.Now())

	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Insert persists a new user. The unique email index turns a racing
// duplicate into ErrDuplicate.
func (r *MongoUserRepository) Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "insert", time.Now())

	u.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, email string, p models.ProfilePatch) (UpdateResult, error) {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Photo != nil {
		set["photo"] = *p.Photo
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	return r.update(ctx, bson.M{"email": email}, bson.M{"$set": set})
}

func (r *MongoUserRepository) RequestRole(ctx context.Context, email string, role models.Role) (UpdateResult, error) {
	return r.update(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
		"status":        models.StatusRequested,
		"requestedRole": role,
	}})
}

func (r *MongoUserRepository) GrantRole(ctx context.Context, id primitive.ObjectID, role models.Role) (UpdateResult, error) {
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":          role,
		"status":        models.StatusActive,
		"requestedRole": nil,
	}})
}

func (r *MongoUserRepository) update(ctx context.Context, filter, update bson.M) (UpdateResult, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "update", time.Now())

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update user: %w", err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
