// Package middleware provides the HTTP middleware shared by every FoodMate route.
package middleware

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/foodmate/pkg/auth"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
	"github.com/shashiranjanraj/foodmate/pkg/response"
)

// Verifier checks a raw bearer token. *auth.Signer satisfies it.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// Authenticate rejects requests without a valid bearer credential and
// stores the verified claims in the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("credential rejected", "error", err)
				response.Unauthorized(w)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("caller", claims.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromCtx returns the verified claims, if any.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok && c != nil
}

// EmailFromCtx returns the caller email, or "" for anonymous requests.
func EmailFromCtx(ctx context.Context) string {
	if c, ok := ClaimsFromCtx(ctx); ok {
		return c.Email
	}
	return ""
}
