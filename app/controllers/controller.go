// Package controllers adapts HTTP requests onto the services. Handlers
// read path, query and body, pass the verified caller explicitly and
// write the service result or its mapped error.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/middleware"
)

// caller is the verified email, or "" on open routes.
func caller(c *ctx.Context) string {
	return middleware.EmailFromCtx(c.Context())
}

// fail writes err as {"message"} with its mapped status. Internal faults
// are logged here since their cause is not sent to the client.
func fail(c *ctx.Context, err error) {
	code := services.StatusCode(err)
	if code == http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed", "method", c.R.Method, "path", c.R.URL.Path, "error", err)
	}
	c.Error(code, services.Message(err))
}

// Health answers the root liveness check.
func Health(c *ctx.Context) {
	c.String(http.StatusOK, "FoodMate Server is Running")
}
