// Package rbac provides role-based access control middleware.
//
// Roles are not carried in the credential; they are read from the user
// directory on every request so a grant or revoke applies immediately.
package rbac

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/middleware"
	"github.com/shashiranjanraj/foodmate/pkg/response"
)

// RoleResolver looks up the stored role of a user. An unknown user has
// role "" and no error.
type RoleResolver interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// HasRole returns middleware that allows access only to callers whose
// stored role is one of roles. Requires middleware.Authenticate to have run.
func HasRole(resolver RoleResolver, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := middleware.EmailFromCtx(r.Context())
			if email == "" {
				response.Unauthorized(w)
				return
			}

			role, err := resolver.RoleOf(r.Context(), email)
			if err != nil {
				logger.WithCtx(r.Context()).Error("role lookup failed", "error", err)
				response.Error(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
