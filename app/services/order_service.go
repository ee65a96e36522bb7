package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
)

// OrderService manages the order lifecycle:
//
//	pending -> accepted | preparing | delivered | paid | cancelled
//
// paid and cancelled are terminal.
type OrderService struct {
	orders repositories.OrderRepository
	meals  repositories.MealRepository
	auth   *AuthService
	now    func() time.Time
}

func NewOrderService(orders repositories.OrderRepository, meals repositories.MealRepository, auth *AuthService) *OrderService {
	return &OrderService{orders: orders, meals: meals, auth: auth, now: time.Now}
}

// OrderInput is what a buyer submits at checkout. Status and time are
// always set by the server; members not listed here are kept in Extra.
type OrderInput struct {
	UserEmail string       `json:"userEmail" validate:"required,email"`
	UserName  string       `json:"userName"`
	ChefEmail string       `json:"chefEmail"`
	ChefID    string       `json:"chefId"`
	MealID    string       `json:"mealId"`
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	Price     models.Price `json:"price" validate:"gte=0"`
	Quantity  int          `json:"quantity" validate:"gte=0"`
	Address   string       `json:"address"`
	Extra     bson.M       `json:"-" validate:"-"`
}

func (in *OrderInput) UnmarshalJSON(b []byte) error {
	type fields OrderInput
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	extra, err := models.OrderExtra(b)
	if err != nil {
		return err
	}
	*in = OrderInput(f)
	in.Extra = extra
	return nil
}

type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

func (s *OrderService) Create(ctx context.Context, in OrderInput) (InsertResult, error) {
	if strings.TrimSpace(in.UserEmail) == "" {
		return InsertResult{}, invalid("userEmail is required")
	}
	o := &models.Order{
		UserEmail:   in.UserEmail,
		UserName:    in.UserName,
		ChefEmail:   in.ChefEmail,
		ChefID:      in.ChefID,
		MealID:      in.MealID,
		Name:        in.Name,
		Image:       in.Image,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Address:     in.Address,
		OrderTime:   s.now().UTC(),
		OrderStatus: models.OrderPending,
	}
	o.SetExtra(in.Extra)
	id, err := s.orders.Insert(ctx, o)
	if err != nil {
		return InsertResult{}, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created", "order_id", id.Hex(), "meal_id", in.MealID)
	return InsertResult{InsertedID: id.Hex()}, nil
}

// ListForBuyer returns the caller's orders. Orders without a usable display
// name get name, image and price from their meal; this is not written back.
func (s *OrderService) ListForBuyer(ctx context.Context, caller, email string) ([]models.Order, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return nil, err
	}
	orders, err := s.orders.ByBuyer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	cache := map[string]*models.Meal{}
	for i := range orders {
		o := &orders[i]
		if !o.NeedsBackfill() || o.MealID == "" {
			continue
		}
		meal, seen := cache[o.MealID]
		if !seen {
			meal, err = s.meals.Find(ctx, o.MealID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("backfill order %s: %w", o.ID.Hex(), err)
			}
			cache[o.MealID] = meal
		}
		if meal != nil {
			o.Backfill(*meal)
		}
	}
	return orders, nil
}

// ListForChef returns orders placed with the caller, newest first.
func (s *OrderService) ListForChef(ctx context.Context, caller, email string) ([]models.Order, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return nil, err
	}
	orders, err := s.orders.ByChef(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list chef orders: %w", err)
	}
	return orders, nil
}

// Get fails with ErrNotFound for unknown and malformed ids alike.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("order")
	}
	o, err := s.orders.Find(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// SetStatus moves a non-terminal order to status. The store update is
// conditional on the order still being non-terminal, so a concurrent
// payment or cancellation wins.
func (s *OrderService) SetStatus(ctx context.Context, id, status string) (repositories.UpdateResult, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return repositories.UpdateResult{}, invalid("unknown order status %q", status)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return repositories.UpdateResult{}, err
	}
	if o.OrderStatus.Terminal() {
		metrics.OrderTransitions.WithLabelValues(string(next), "rejected").Inc()
		return repositories.UpdateResult{}, ErrInvalidTransition
	}

	res, err := s.orders.SetStatus(ctx, o.ID, next, models.TerminalStatuses)
	if err != nil {
		return res, fmt.Errorf("set order status: %w", err)
	}
	if res.MatchedCount == 0 {
		metrics.OrderTransitions.WithLabelValues(string(next), "rejected").Inc()
		return res, ErrInvalidTransition
	}

	metrics.OrderTransitions.WithLabelValues(string(next), "ok").Inc()
	logger.WithCtx(ctx).Info("order status changed", "order_id", id, "from", o.OrderStatus, "to", next)
	return res, nil
}

// Delete removes an order in any state. Only the buyer or an admin may do
// it. Deleting an unknown order succeeds with deletedCount 0.
func (s *OrderService) Delete(ctx context.Context, caller, id string) (repositories.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.DeleteResult{}, invalid("malformed order id %q", id)
	}
	o, err := s.orders.Find(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return repositories.DeleteResult{}, nil
	}
	if err != nil {
		return repositories.DeleteResult{}, fmt.Errorf("delete order: %w", err)
	}

	if o.UserEmail != caller {
		if err := s.auth.RequireAdmin(ctx, caller); err != nil {
			return repositories.DeleteResult{}, err
		}
	}

	res, err := s.orders.Delete(ctx, oid)
	if err != nil {
		return res, fmt.Errorf("delete order: %w", err)
	}
	logger.WithCtx(ctx).Info("order deleted", "order_id", id, "status", o.OrderStatus)
	return res, nil
}
