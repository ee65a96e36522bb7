package kernel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/database/seeders"
	"github.com/shashiranjanraj/foodmate/internal/kernel"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

const origin = "http://localhost:5173"

type app struct {
	t       *testing.T
	handler http.Handler
	store   *repositories.Store
	signer  *auth.Signer
	gateway *payment.Fake
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := repositories.NewMemoryStore()
	signer := auth.NewSigner("kernel-test-secret", time.Hour)
	gw := &payment.Fake{}
	h := kernel.NewHandler(kernel.Deps{
		Services:    services.New(store, signer, gw, "usd"),
		Verifier:    signer,
		CORSOrigins: []string{origin},
		Timeout:     5 * time.Second,
	})
	return &app{t: t, handler: h, store: store, signer: signer, gateway: gw}
}

func (a *app) token(email string) string {
	a.t.Helper()
	tok, err := a.signer.Issue(auth.Claims{Email: email})
	require.NoError(a.t, err)
	return tok
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	w := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FoodMate Server is Running", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCredentialsIssueUsableToken(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/credentials", "/jwt"} {
		w := a.do(http.MethodPost, path, "", map[string]string{"email": "buyer@x.io"})
		require.Equal(t, http.StatusOK, w.Code, path)
		tok := decode[map[string]string](t, w)["token"]
		require.NotEmpty(t, tok)

		w = a.do(http.MethodGet, "/orders?email=buyer@x.io", tok, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := a.do(http.MethodPost, "/credentials", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFailures(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/meals", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized access", decode[map[string]string](t, w)["message"])

	w = a.do(http.MethodPost, "/meals", "garbage", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := auth.NewSigner("someone-else", time.Hour)
	forged, err := other.Issue(auth.Claims{Email: "buyer@x.io"})
	require.NoError(t, err)
	w = a.do(http.MethodGet, "/orders?email=buyer@x.io", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, "/orders?email=buyer@x.io", a.token("other@x.io"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden access", decode[map[string]string](t, w)["message"])
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	w := a.do(http.MethodGet, "/users", a.token("nobody@x.io"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := seeders.SeedAdmin(ctx, a.store.Users, "admin@x.io")
	require.NoError(t, err)
	admin := a.token("admin@x.io")

	w = a.do(http.MethodPost, "/users", "", map[string]string{"email": "cook@x.io", "name": "Cook"})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]string](t, w)["insertedId"]
	require.NotEmpty(t, id)

	w = a.do(http.MethodPost, "/users", "", map[string]string{"email": "cook@x.io"})
	require.Equal(t, http.StatusOK, w.Code)
	dup := decode[map[string]any](t, w)
	assert.Equal(t, "user already exists", dup["message"])
	assert.Nil(t, dup["insertedId"])

	w = a.do(http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = a.do(http.MethodPost, "/users/request-role", a.token("cook@x.io"), map[string]string{"email": "cook@x.io", "requestedRole": "chef"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPatch, "/users/admin/"+id, a.token("cook@x.io"), map[string]string{"role": "chef"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/users/admin/"+id, admin, map[string]string{"role": "chef"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["matchedCount"])

	w = a.do(http.MethodGet, "/users/chef/cook@x.io", a.token("cook@x.io"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, w)["isChef"])

	w = a.do(http.MethodGet, "/users/admin/admin@x.io", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, w)["isAdmin"])

	w = a.do(http.MethodGet, "/users/admin/admin@x.io", a.token("cook@x.io"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/payments", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfile(t *testing.T) {
	a := newApp(t)
	a.do(http.MethodPost, "/users", "", map[string]string{"email": "a@x.io", "name": "A"})

	w := a.do(http.MethodGet, "/users/profile/ghost@x.io", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = a.do(http.MethodPatch, "/users/profile/a@x.io", a.token("a@x.io"), map[string]string{"photoURL": "me.png"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/users/profile/a@x.io", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[map[string]any](t, w)
	assert.Equal(t, "me.png", u["photo"])
	assert.Equal(t, "A", u["name"])
}

func TestMealCatalog(t *testing.T) {
	a := newApp(t)
	chef := a.token("chef@x.io")

	var ids []string
	for _, title := range []string{"Pad Thai", "Green Curry", "Mango Rice"} {
		w := a.do(http.MethodPost, "/meals", chef, map[string]any{"title": title, "category": "thai", "price": "8.5", "ingredients": []string{"x"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		ids = append(ids, decode[map[string]string](t, w)["insertedId"])
	}

	w := a.do(http.MethodGet, "/meals?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[[]map[string]any](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, "Mango Rice", page[0]["title"])
	assert.Equal(t, ids[2], page[0]["_id"])

	w = a.do(http.MethodGet, "/mealsCount?search=CURRY", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

	w = a.do(http.MethodGet, "/meals/"+ids[0], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]any](t, w)
	assert.Equal(t, 8.5, m["price"])
	assert.Equal(t, "chef@x.io", m["chefEmail"])
	assert.Equal(t, []any{"x"}, m["ingredients"])

	w = a.do(http.MethodGet, "/meals/chef/chef@x.io", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 3)

	w = a.do(http.MethodPatch, "/meals/"+ids[0], chef, map[string]any{"price": 9})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["modifiedCount"])

	w = a.do(http.MethodPatch, "/meals/missing", chef, map[string]any{"price": 9})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodDelete, "/meals/"+ids[0], chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["deletedCount"])

	w = a.do(http.MethodGet, "/meals/"+ids[0], "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "meal not found", decode[map[string]string](t, w)["message"])
}

func TestOrderPaymentReviewFlow(t *testing.T) {
	a := newApp(t)
	chef := a.token("chef@x.io")
	buyer := a.token("buyer@x.io")

	w := a.do(http.MethodPost, "/meals", chef, map[string]any{"title": "Laksa", "price": 12.5, "image": "laksa.png"})
	require.Equal(t, http.StatusOK, w.Code)
	mealID := decode[map[string]string](t, w)["insertedId"]

	w = a.do(http.MethodPost, "/orders", "", map[string]any{
		"userEmail": "buyer@x.io", "chefEmail": "chef@x.io", "mealId": mealID,
		"name": "unknown", "quantity": 1, "orderStatus": "paid",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	orderID := decode[map[string]string](t, w)["insertedId"]

	w = a.do(http.MethodGet, "/orders?email=buyer@x.io", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]map[string]any](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, "Laksa", orders[0]["name"])
	assert.Equal(t, "pending", orders[0]["orderStatus"])
	assert.Equal(t, 12.5, orders[0]["price"])

	w = a.do(http.MethodGet, "/orders/chef/chef@x.io", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodPatch, "/orders/status/"+orderID, chef, map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(http.MethodPatch, "/orders/status/"+orderID, chef, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"price": 12.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["clientSecret"])
	assert.Equal(t, []payment.Intent{{Amount: 1250, Currency: "usd"}}, a.gateway.Intents())

	w = a.do(http.MethodPost, "/payments", buyer, map[string]any{"orderId": orderID, "price": 12.5, "transactionId": "pi_123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[map[string]map[string]any](t, w)
	assert.NotEmpty(t, rec["paymentResult"]["insertedId"])
	assert.Equal(t, float64(1), rec["orderResult"]["matchedCount"])

	w = a.do(http.MethodGet, "/orders/"+orderID, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	o := decode[map[string]any](t, w)
	assert.Equal(t, "paid", o["orderStatus"])
	assert.Equal(t, "paid", o["paymentStatus"])

	w = a.do(http.MethodPatch, "/orders/status/"+orderID, chef, map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/payments/buyer@x.io", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	for _, rating := range []int{5, 2} {
		w = a.do(http.MethodPost, "/reviews", buyer, map[string]any{"mealId": mealID, "rating": rating, "text": "ok"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = a.do(http.MethodPost, "/reviews", buyer, map[string]any{"mealId": mealID, "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/meals/"+mealID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]any](t, w)
	assert.Equal(t, 3.5, m["rating"])
	assert.Equal(t, float64(2), m["reviews_count"])
	assert.Equal(t, float64(2), m["likes"])

	w = a.do(http.MethodGet, "/reviews?email=buyer@x.io", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]map[string]any](t, w)
	require.Len(t, reviews, 2)
	assert.Equal(t, "buyer@x.io", reviews[0]["email"])

	w = a.do(http.MethodDelete, "/orders/"+orderID, chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodDelete, "/orders/"+orderID, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["deletedCount"])
}

func TestPaymentIntentWithoutGateway(t *testing.T) {
	store := repositories.NewMemoryStore()
	signer := auth.NewSigner("s", time.Hour)
	h := kernel.NewHandler(kernel.Deps{
		Services: services.New(store, signer, payment.Disabled{}, "usd"),
		Verifier: signer,
	})

	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"price": 3}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, `{"message":"internal server error"}`, strings.TrimSpace(w.Body.String()))
}

func TestLegacyMealIDs(t *testing.T) {
	a := newApp(t)
	meals := a.store.Meals.(*repositories.MemoryMealRepository)
	meals.SeedRaw(map[string]any{"_id": "legacy-1", "foodName": "Old noodles", "price": "$4.00"})

	w := a.do(http.MethodGet, "/meals/legacy-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]any](t, w)
	assert.Equal(t, "Old noodles", m["title"])
	assert.Equal(t, float64(4), m["price"])
	assert.Equal(t, "legacy-1", m["_id"])
}

func TestUnknownRouteAndMethod(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decode[map[string]string](t, w)["message"])

	w = a.do(http.MethodPut, "/meals", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/meals", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newApp(t)
	a.do(http.MethodGet, "/meals", "", nil)

	w := a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodmate_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/meals"`)
}

func TestRouteTable(t *testing.T) {
	signer := auth.NewSigner("s", time.Hour)
	r := kernel.NewRouter(kernel.Deps{
		Services: services.New(repositories.NewMemoryStore(), signer, payment.Disabled{}, ""),
		Verifier: signer,
	})
	seen := map[string]bool{}
	for _, ri := range r.Routes() {
		seen[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /credentials", "GET /users", "PATCH /users/admin/{subject}", "GET /users/admin/{subject}",
		"GET /mealsCount", "PATCH /orders/status/{id}", "POST /create-payment-intent", "GET /payments/{email}",
		"POST /reviews", "GET /metrics",
	} {
		assert.True(t, seen[want], want)
	}
}

func TestNonFinitePriceRejected(t *testing.T) {
	a := newApp(t)
	chef := a.token("chef@x.io")

	w := a.do(http.MethodPost, "/meals", chef, map[string]any{"title": "Soup", "price": 4})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]string](t, w)["insertedId"]

	for _, price := range []string{"NaN", "Inf", "-Infinity"} {
		w = a.do(http.MethodPost, "/meals", chef, map[string]any{"title": "Bad", "price": price})
		assert.Equal(t, http.StatusBadRequest, w.Code, price)

		w = a.do(http.MethodPatch, "/meals/"+id, chef, map[string]any{"price": price})
		assert.Equal(t, http.StatusBadRequest, w.Code, price)

		w = a.do(http.MethodPost, "/orders", "", map[string]any{"userEmail": "buyer@x.io", "price": price})
		assert.Equal(t, http.StatusBadRequest, w.Code, price)
	}

	w = a.do(http.MethodGet, "/meals", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meals := decode[[]map[string]any](t, w)
	require.Len(t, meals, 1)
	assert.Equal(t, float64(4), meals[0]["price"])
}

func TestHugePageIsEmpty(t *testing.T) {
	a := newApp(t)
	w := a.do(http.MethodPost, "/meals", a.token("chef@x.io"), map[string]any{"title": "Soup"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/meals?page=92233720368547759&limit=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestOrderAndPaymentKeepClientFields(t *testing.T) {
	a := newApp(t)
	buyer := a.token("buyer@x.io")

	w := a.do(http.MethodPost, "/orders", "", map[string]any{
		"userEmail":     "buyer@x.io",
		"name":          "Laksa",
		"chefName":      "Ana",
		"mealName":      "Laksa",
		"options":       map[string]any{"spicy": true},
		"paymentStatus": "paid",
		"_id":           "forged",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	orderID := decode[map[string]string](t, w)["insertedId"]
	assert.NotEqual(t, "forged", orderID)

	w = a.do(http.MethodGet, "/orders/"+orderID, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	o := decode[map[string]any](t, w)
	assert.Equal(t, "Ana", o["chefName"])
	assert.Equal(t, "Laksa", o["mealName"])
	assert.Equal(t, map[string]any{"spicy": true}, o["options"])
	assert.Equal(t, orderID, o["_id"])
	assert.Equal(t, "pending", o["orderStatus"])
	assert.NotContains(t, o, "paymentStatus")

	w = a.do(http.MethodPost, "/payments", buyer, map[string]any{
		"orderId": orderID, "amount": 12.5, "status": "succeeded", "mealName": "Laksa",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/payments/buyer@x.io", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payments := decode[[]map[string]any](t, w)
	require.Len(t, payments, 1)
	assert.Equal(t, "succeeded", payments[0]["status"])
	assert.Equal(t, "Laksa", payments[0]["mealName"])
	assert.Equal(t, 12.5, payments[0]["amount"])
}
