package routes

import (
	"github.com/shashiranjanraj/foodmate/app/controllers"
	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
	"github.com/shashiranjanraj/foodmate/pkg/middleware"
	"github.com/shashiranjanraj/foodmate/pkg/rbac"
	"github.com/shashiranjanraj/foodmate/pkg/router"
)

// RegisterAPI mounts the REST surface. Open routes need no credential,
// authed routes need a valid bearer token and admin routes additionally
// need the caller's stored role to be admin.
func RegisterAPI(r *router.Router, svc *services.Services, verifier middleware.Verifier) {
	authC := controllers.NewAuthController(svc.Auth)
	users := controllers.NewUserController(svc.Users)
	meals := controllers.NewMealController(svc.Meals)
	orders := controllers.NewOrderController(svc.Orders)
	payments := controllers.NewPaymentController(svc.Payments)
	reviews := controllers.NewReviewController(svc.Reviews)

	open := r.Group("")
	open.Get("/", "health", ctx.Wrap(controllers.Health))
	open.Post("/credentials", "auth.credentials", ctx.Wrap(authC.IssueCredential))
	open.Post("/jwt", "auth.jwt", ctx.Wrap(authC.IssueCredential))

	open.Get("/users/profile/{email}", "users.profile", ctx.Wrap(users.Profile))
	open.Post("/users", "users.register", ctx.Wrap(users.Register))

	open.Get("/meals", "meals.index", ctx.Wrap(meals.Index))
	open.Get("/mealsCount", "meals.count", ctx.Wrap(meals.Count))
	open.Get("/meals/{id}", "meals.show", ctx.Wrap(meals.Show))

	open.Post("/orders", "orders.store", ctx.Wrap(orders.Store))
	open.Post("/create-payment-intent", "payments.intent", ctx.Wrap(payments.CreateIntent))
	open.Get("/reviews", "reviews.index", ctx.Wrap(reviews.Index))

	authed := r.Group("", middleware.Authenticate(verifier))
	authed.Patch("/users/profile/{email}", "users.profile.update", ctx.Wrap(users.UpdateProfile))
	authed.Post("/users/request-role", "users.request-role", ctx.Wrap(users.RequestRole))
	authed.Get("/users/admin/{subject}", "users.is-admin", ctx.Wrap(users.IsAdmin))
	authed.Get("/users/chef/{email}", "users.is-chef", ctx.Wrap(users.IsChef))

	authed.Post("/meals", "meals.store", ctx.Wrap(meals.Store))
	authed.Get("/meals/chef/{email}", "meals.chef", ctx.Wrap(meals.ByChef))
	authed.Patch("/meals/{id}", "meals.update", ctx.Wrap(meals.Update))
	authed.Delete("/meals/{id}", "meals.destroy", ctx.Wrap(meals.Destroy))

	authed.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	authed.Get("/orders/{id}", "orders.show", ctx.Wrap(orders.Show))
	authed.Get("/orders/chef/{email}", "orders.chef", ctx.Wrap(orders.ByChef))
	authed.Patch("/orders/status/{id}", "orders.status", ctx.Wrap(orders.UpdateStatus))
	authed.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orders.Destroy))

	authed.Post("/payments", "payments.store", ctx.Wrap(payments.Store))
	authed.Get("/payments/{email}", "payments.user", ctx.Wrap(payments.ByEmail))

	authed.Post("/reviews", "reviews.store", ctx.Wrap(reviews.Store))

	admin := authed.Group("", rbac.HasRole(svc.Auth, string(models.RoleAdmin)))
	admin.Get("/users", "users.index", ctx.Wrap(users.Index))
	admin.Patch("/users/admin/{subject}", "users.grant", ctx.Wrap(users.GrantRole))
	admin.Get("/payments", "payments.index", ctx.Wrap(payments.Index))
}
