// Package services holds the business rules. Handlers pass the verified
// caller email explicitly; services never read request state.
package services

import (
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

// Services is the set handed to the controllers.
type Services struct {
	Auth     *AuthService
	Users    *UserService
	Meals    *MealService
	Orders   *OrderService
	Payments *PaymentService
	Reviews  *ReviewService
}

// New wires every service to store.
func New(store *repositories.Store, signer *auth.Signer, gateway payment.Gateway, currency string) *Services {
	authSvc := NewAuthService(signer, store.Users)
	return &Services{
		Auth:     authSvc,
		Users:    NewUserService(store.Users, authSvc),
		Meals:    NewMealService(store.Meals),
		Orders:   NewOrderService(store.Orders, store.Meals, authSvc),
		Payments: NewPaymentService(store, gateway, authSvc, currency),
		Reviews:  NewReviewService(store.Reviews, store.Meals),
	}
}
