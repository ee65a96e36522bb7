// Package ctx provides a gin.Context-inspired request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func ShowMeal(c *ctx.Context) {
//	    meal, err := svc.Get(c.Context(), c.Param("id"))
//	    ...
//	    c.JSON(http.StatusOK, meal)
//	}
//
//	router.Get("/meals/{id}", "meals.show", ctx.Wrap(ShowMeal))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/foodmate/pkg/bind"
	"github.com/shashiranjanraj/foodmate/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter (e.g. "/meals/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryInt parses a query value as an int, returning def when it is
// absent or not a number.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return n
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// BindJSON decodes the JSON body into dest and runs validation. On any
// failure it writes a 400 and returns false.
//
//	var input CreateOrderInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.Error(http.StatusBadRequest, bind.Summary(errs))
		return false
	}
	return true
}

// DecodeJSON decodes the body into dest without validation. On failure it
// writes a 400 and returns false.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends v with status 200.
func (c *Context) Success(v any) {
	c.JSON(http.StatusOK, v)
}

// Error sends {"message": message} with the given status.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	fmt.Fprintf(c.W, format, args...)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
