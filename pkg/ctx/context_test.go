package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	appctx "github.com/shashiranjanraj/foodmate/pkg/ctx"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestParamAndQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/meals/{id}", appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "m-1", c.Param("id"))
		assert.Equal(t, 2, c.QueryInt("page", 0))
		assert.Equal(t, 100, c.QueryInt("limit", 100))
		assert.Equal(t, "pasta", c.Query("search"))
		c.Success(nil)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meals/m-1?page=2&limit=abc&search=pasta", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@example.com"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email" validate:"required,email"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		assert.Equal(t, "john@example.com", input.Email)
		c.Success(nil)
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONInvalidIsBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"email is required"}`, rec.Body.String())
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Error(http.StatusNotFound, "meal not found")
		assert.Equal(t, http.StatusNotFound, c.WrittenStatus())
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"meal not found"}`, rec.Body.String())
}
