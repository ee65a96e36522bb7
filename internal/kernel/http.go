// Package kernel assembles the HTTP handler: global middleware, the REST
// routes and the /metrics endpoint.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/foodmate/app/routes"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/metrics"
	"github.com/shashiranjanraj/foodmate/pkg/middleware"
	"github.com/shashiranjanraj/foodmate/pkg/reqid"
	"github.com/shashiranjanraj/foodmate/pkg/response"
	"github.com/shashiranjanraj/foodmate/pkg/router"
)

// Deps is everything the handler needs from the process.
type Deps struct {
	Services    *services.Services
	Verifier    middleware.Verifier
	CORSOrigins []string
	// Timeout bounds each request's context. Zero disables it.
	Timeout time.Duration
}

// NewRouter returns the router with every route mounted. NewHandler
// wraps it; the routes command reads its table.
func NewRouter(d Deps) *router.Router {
	r := router.New()

	// Outermost first. Recovery sits inside Logger so a recovered 500 is
	// logged with its request id.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(d.CORSOrigins)))
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	routes.RegisterAPI(r, d.Services, d.Verifier)
	return r
}

func NewHandler(d Deps) http.Handler {
	return NewRouter(d).Handler()
}
