// Package reqid provides request ID generation and context propagation.
//
// A unique ID is attached to every HTTP request, stored in the request
// context, echoed via the X-Request-ID header and included in every
// structured log line through logger.WithCtx(ctx).
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ctxKey is the unexported key used to store the request ID in context.
type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

// maxInboundLen bounds client supplied ids so they cannot bloat log lines.
const maxInboundLen = 128

// New returns a random UUIDv4 string.
func New() string {
	return uuid.NewString()
}

// WithValue stores id in ctx and returns the new context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx extracts the request ID from ctx, or "" if none is present.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware reuses an upstream X-Request-ID when present and sane,
// otherwise generates one. The ID is set on the response too.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" || len(id) > maxInboundLen {
				id = New()
			}

			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
