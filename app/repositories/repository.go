// Package repositories is the collection store adapter: one repository per
// collection (users, meals, orders, payments, reviews), each with a MongoDB
// and an in-memory implementation.
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
)

// Collection names.
const (
	UsersCollection    = "users"
	MealsCollection    = "meals"
	OrdersCollection   = "orders"
	PaymentsCollection = "payments"
	ReviewsCollection  = "reviews"
	LogsCollection     = "logs"
)

var (
	ErrNotFound  = errors.New("repositories: not found")
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// UpdateResult mirrors the store's update acknowledgement.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the store's delete acknowledgement.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

type UserRepository interface {
	All(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert returns ErrDuplicate when the email is taken.
	Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	UpdateProfile(ctx context.Context, email string, p models.ProfilePatch) (UpdateResult, error)
	RequestRole(ctx context.Context, email string, role models.Role) (UpdateResult, error)
	// GrantRole sets role, marks the user active and clears requestedRole
	// in a single update.
	GrantRole(ctx context.Context, id primitive.ObjectID, role models.Role) (UpdateResult, error)
}

// MealQuery is a page of the catalog. Search matches the title aliases and
// category case-insensitively; empty means everything.
type MealQuery struct {
	Search string
	Skip   int64
	Limit  int64
}

// MealRepository resolves ids through the legacy lookup chain, so every
// method accepting an id also accepts pre-migration identifiers.
type MealRepository interface {
	Search(ctx context.Context, q MealQuery) ([]models.Meal, error)
	Count(ctx context.Context, search string) (int64, error)
	Find(ctx context.Context, id string) (*models.Meal, error)
	ByChef(ctx context.Context, email string) ([]models.Meal, error)
	Insert(ctx context.Context, m models.Meal) (string, error)
	Update(ctx context.Context, id string, p models.MealPatch) (UpdateResult, error)
	Delete(ctx context.Context, id string) (DeleteResult, error)
	// ApplyRatingStats sets rating and reviews_count and bumps likes by one.
	ApplyRatingStats(ctx context.Context, id string, s models.RatingStats) (UpdateResult, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, o *models.Order) (primitive.ObjectID, error)
	Find(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ByBuyer(ctx context.Context, email string) ([]models.Order, error)
	// ByChef matches chefId or chefEmail, newest orderTime first.
	ByChef(ctx context.Context, email string) ([]models.Order, error)
	// SetStatus only matches orders whose current status is not in unless.
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, unless []models.OrderStatus) (UpdateResult, error)
	// MarkPaid sets orderStatus and paymentStatus to paid unconditionally.
	MarkPaid(ctx context.Context, id primitive.ObjectID) (UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (DeleteResult, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, p *models.Payment) (primitive.ObjectID, error)
	ByEmail(ctx context.Context, email string) ([]models.Payment, error)
	All(ctx context.Context) ([]models.Payment, error)
}

type ReviewRepository interface {
	Insert(ctx context.Context, r *models.Review) (primitive.ObjectID, error)
	// List returns reviews newest first, filtered by reviewer when email is set.
	List(ctx context.Context, email string) ([]models.Review, error)
	RatingStats(ctx context.Context, mealID string) (models.RatingStats, error)
}

// Transactor runs fn atomically when the store supports it. Repositories
// called with the ctx passed to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories handed to the services.
type Store struct {
	Users    UserRepository
	Meals    MealRepository
	Orders   OrderRepository
	Payments PaymentRepository
	Reviews  ReviewRepository
	Tx       Transactor
}

// NoTx runs fn directly.
type NoTx struct{}

func (NoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
