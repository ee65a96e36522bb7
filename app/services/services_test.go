package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
	"github.com/shashiranjanraj/foodmate/pkg/payment"
)

type fixture struct {
	store   *repositories.Store
	gateway *payment.Fake
	svc     *services.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	gw := &payment.Fake{}
	return &fixture{
		store:   store,
		gateway: gw,
		svc:     services.New(store, auth.NewSigner("test-secret", time.Hour), gw, "usd"),
	}
}

func (f *fixture) register(t *testing.T, email string) primitive.ObjectID {
	t.Helper()
	res, err := f.svc.Users.Register(context.Background(), services.RegisterInput{Email: email})
	require.NoError(t, err)
	require.NotNil(t, res.InsertedID)
	return *res.InsertedID
}

func (f *fixture) promote(t *testing.T, email string, role models.Role) {
	t.Helper()
	id := f.register(t, email)
	_, err := f.svc.Users.GrantRole(context.Background(), id.Hex(), role)
	require.NoError(t, err)
}

func TestStatusCodeTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("meal %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInvalidTransition, http.StatusBadRequest},
		{errors.New("socket closed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, services.StatusCode(tc.err), fmt.Sprint(tc.err))
	}
	assert.Equal(t, "internal server error", services.Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "forbidden access", services.Message(services.ErrForbidden))
}

func TestCredentialRoundTrip(t *testing.T) {
	f := newFixture(t)
	token, err := f.svc.Auth.IssueCredential(context.Background(), services.CredentialInput{Email: "a@x.io"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.svc.Auth.IssueCredential(context.Background(), services.CredentialInput{Email: "  "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestRegisterOncePerEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Users.Register(ctx, services.RegisterInput{Email: "a@x.io", Name: "A"})
	require.NoError(t, err)
	require.NotNil(t, first.InsertedID)
	assert.Empty(t, first.Message)

	second, err := f.svc.Users.Register(ctx, services.RegisterInput{Email: "a@x.io", Name: "Again"})
	require.NoError(t, err)
	assert.Nil(t, second.InsertedID)
	assert.Equal(t, "user already exists", second.Message)

	all, err := f.svc.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, models.RoleNone, all[0].Role)
	assert.Equal(t, models.StatusNone, all[0].Status)
}

func TestProfileAbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.Users.Profile(context.Background(), "ghost@x.io")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateProfileSelfOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.io")
	name := "Alice"

	_, err := f.svc.Users.UpdateProfile(ctx, "b@x.io", "a@x.io", models.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.svc.Users.UpdateProfile(ctx, "a@x.io", "a@x.io", models.ProfilePatch{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	res, err := f.svc.Users.UpdateProfile(ctx, "a@x.io", "a@x.io", models.ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	u, err := f.svc.Users.Profile(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}

func TestRoleRequestAndGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "cook@x.io")

	_, err := f.svc.Users.RequestRole(ctx, "cook@x.io", "cook@x.io", models.RoleNone)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.Users.RequestRole(ctx, "cook@x.io", "cook@x.io", models.RoleChef)
	require.NoError(t, err)
	u, _ := f.svc.Users.Profile(ctx, "cook@x.io")
	assert.Equal(t, models.StatusRequested, u.Status)
	require.NotNil(t, u.RequestedRole)
	assert.Equal(t, models.RoleChef, *u.RequestedRole)
	assert.Equal(t, models.RoleNone, u.Role, "a request grants nothing")

	isChef, err := f.svc.Users.IsChef(ctx, "cook@x.io", "cook@x.io")
	require.NoError(t, err)
	assert.False(t, isChef)

	_, err = f.svc.Users.GrantRole(ctx, id.Hex(), models.RoleChef)
	require.NoError(t, err)
	u, _ = f.svc.Users.Profile(ctx, "cook@x.io")
	assert.Equal(t, models.RoleChef, u.Role)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.Nil(t, u.RequestedRole)

	isChef, err = f.svc.Users.IsChef(ctx, "cook@x.io", "cook@x.io")
	require.NoError(t, err)
	assert.True(t, isChef)

	_, err = f.svc.Users.IsChef(ctx, "other@x.io", "cook@x.io")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestGrantRoleInputs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.GrantRole(ctx, "not-an-id", models.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.Users.GrantRole(ctx, primitive.NewObjectID().Hex(), "superuser")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	res, err := f.svc.Users.GrantRole(ctx, primitive.NewObjectID().Hex(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, res.MatchedCount)
}

func TestIsAdminForUnknownUser(t *testing.T) {
	f := newFixture(t)
	ok, err := f.svc.Users.IsAdmin(context.Background(), "ghost@x.io", "ghost@x.io")
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.svc.Auth.RequireAdmin(context.Background(), "")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestMealSearchPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": fmt.Sprintf("Dish %02d", i), "category": "dinner", "price": 5})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for page := 0; page < 3; page++ {
		meals, err := f.svc.Meals.Search(ctx, page, 10, "")
		require.NoError(t, err)
		for _, m := range meals {
			assert.False(t, seen[m.ID], "meal %s repeated across pages", m.ID)
			seen[m.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	n, err := f.svc.Meals.Count(ctx, "dish 1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	meals, err := f.svc.Meals.Search(ctx, -3, 1000, "")
	require.NoError(t, err)
	assert.Len(t, meals, 25)

	meals, err = f.svc.Meals.Search(ctx, math.MaxInt, 100, "")
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestMealCreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{
		"_id": "client-chosen", "mealName": "Curry", "price": "$9.50", "rating": 5, "likes": 40,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", id)

	m, err := f.svc.Meals.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Curry", m.Title)
	assert.Equal(t, 9.5, m.Price)
	assert.Equal(t, "chef@x.io", m.ChefEmail)
	assert.Zero(t, m.Rating)
	assert.Zero(t, m.Likes)

	for _, bad := range []any{-1, "NaN", "Infinity", math.Inf(1), "free"} {
		_, err = f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Bad", "price": bad})
		assert.ErrorIs(t, err, services.ErrInvalidInput, "%v", bad)
	}
	n, err := f.svc.Meals.Count(ctx, "bad")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMealUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Soup"})
	require.NoError(t, err)

	_, err = f.svc.Meals.Update(ctx, id, models.MealPatch{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	title := "Tomato soup"
	_, err = f.svc.Meals.Update(ctx, "missing", models.MealPatch{Title: &title})
	assert.ErrorIs(t, err, services.ErrNotFound)

	nan := models.Price(math.NaN())
	_, err = f.svc.Meals.Update(ctx, id, models.MealPatch{Price: &nan})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	res, err := f.svc.Meals.Update(ctx, id, models.MealPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	del, err := f.svc.Meals.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	del, err = f.svc.Meals.Delete(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, del.DeletedCount)

	_, err = f.svc.Meals.Get(ctx, id)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderCreateIsPendingWithServerTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)

	res, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io", Name: "Soup", Price: 4})
	require.NoError(t, err)

	o, err := f.svc.Orders.Get(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.OrderStatus)
	assert.True(t, o.OrderTime.After(before))

	_, err = f.svc.Orders.Create(ctx, services.OrderInput{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestOrderCreateKeepsClientFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var in services.OrderInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"userEmail": "buyer@x.io",
		"mealName": "Soup",
		"chefName": "Ana",
		"orderStatus": "paid",
		"orderTime": "2001-01-01T00:00:00Z"
	}`), &in))
	assert.Equal(t, "buyer@x.io", in.UserEmail)

	res, err := f.svc.Orders.Create(ctx, in)
	require.NoError(t, err)
	o, err := f.svc.Orders.Get(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"mealName": "Soup", "chefName": "Ana"}, o.Extra)
	assert.Equal(t, models.OrderPending, o.OrderStatus)
	assert.NotEqual(t, 2001, o.OrderTime.Year())
}

func TestRecordPaymentKeepsClientFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io"})
	require.NoError(t, err)

	var in services.PaymentInput
	require.NoError(t, json.Unmarshal([]byte(`{"orderId":"`+res.InsertedID+`","amount":3,"status":"succeeded","_id":"forged"}`), &in))
	_, err = f.svc.Payments.Record(ctx, "buyer@x.io", in)
	require.NoError(t, err)

	mine, err := f.svc.Payments.ListForUser(ctx, "buyer@x.io", "buyer@x.io")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, bson.M{"status": "succeeded"}, mine[0].Extra)
	assert.False(t, mine[0].ID.IsZero())
}

func TestOrderTerminalStatesAreFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io"})
	require.NoError(t, err)
	id := res.InsertedID

	_, err = f.svc.Orders.SetStatus(ctx, id, "teleported")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.Orders.SetStatus(ctx, id, "Accepted")
	require.NoError(t, err)
	_, err = f.svc.Orders.SetStatus(ctx, id, "canceled")
	require.NoError(t, err)

	for _, next := range []string{"pending", "accepted", "delivered", "paid"} {
		_, err = f.svc.Orders.SetStatus(ctx, id, next)
		assert.ErrorIs(t, err, services.ErrInvalidTransition, next)
	}
	o, err := f.svc.Orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, o.OrderStatus)

	_, err = f.svc.Orders.SetStatus(ctx, primitive.NewObjectID().Hex(), "accepted")
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.svc.Orders.Get(ctx, "zzz")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBuyerListingBackfillsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Ramen", "image": "ramen.png", "price": 12})
	require.NoError(t, err)

	res, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io", MealID: mealID, Name: "Unknown Meal"})
	require.NoError(t, err)
	_, err = f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io", MealID: "gone", Name: "n/a"})
	require.NoError(t, err)
	_, err = f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "other@x.io", MealID: mealID})
	require.NoError(t, err)

	_, err = f.svc.Orders.ListForBuyer(ctx, "other@x.io", "buyer@x.io")
	assert.ErrorIs(t, err, services.ErrForbidden)

	orders, err := f.svc.Orders.ListForBuyer(ctx, "buyer@x.io", "buyer@x.io")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Ramen", orders[0].Name)
	assert.Equal(t, "ramen.png", orders[0].Image)
	assert.Equal(t, models.Price(12), orders[0].Price)
	assert.Equal(t, "n/a", orders[1].Name, "unknown meal leaves the order as stored")

	stored, err := f.store.Orders.Find(ctx, mustOID(t, res.InsertedID))
	require.NoError(t, err)
	assert.Equal(t, "Unknown Meal", stored.Name)
	assert.Empty(t, stored.Image)
}

func TestChefListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Orders.Insert(ctx, &models.Order{UserEmail: "b@x.io", ChefID: "chef@x.io", OrderTime: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	_, err = f.store.Orders.Insert(ctx, &models.Order{UserEmail: "b@x.io", ChefEmail: "chef@x.io", OrderTime: time.Now()})
	require.NoError(t, err)
	_, err = f.store.Orders.Insert(ctx, &models.Order{UserEmail: "b@x.io", ChefEmail: "someone@x.io", OrderTime: time.Now()})
	require.NoError(t, err)

	orders, err := f.svc.Orders.ListForChef(ctx, "chef@x.io", "chef@x.io")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "chef@x.io", orders[0].ChefEmail, "newest first")

	_, err = f.svc.Orders.ListForChef(ctx, "", "chef@x.io")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestOrderDeletePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.promote(t, "admin@x.io", models.RoleAdmin)

	mine, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io"})
	require.NoError(t, err)
	theirs, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io"})
	require.NoError(t, err)

	_, err = f.svc.Orders.Delete(ctx, "intruder@x.io", mine.InsertedID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	res, err := f.svc.Orders.Delete(ctx, "buyer@x.io", mine.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	res, err = f.svc.Orders.Delete(ctx, "admin@x.io", theirs.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	res, err = f.svc.Orders.Delete(ctx, "buyer@x.io", mine.InsertedID)
	require.NoError(t, err)
	assert.Zero(t, res.DeletedCount)

	_, err = f.svc.Orders.Delete(ctx, "buyer@x.io", "nope")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestPaymentIntentMinorUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	secret, err := f.svc.Payments.CreateIntent(ctx, services.IntentInput{Price: 12.5})
	require.NoError(t, err)
	assert.NotEmpty(t, secret)

	_, err = f.svc.Payments.CreateIntent(ctx, services.IntentInput{Price: 19.999, Currency: " EUR "})
	require.NoError(t, err)

	assert.Equal(t, []payment.Intent{{Amount: 1250, Currency: "usd"}, {Amount: 2000, Currency: "eur"}}, f.gateway.Intents())

	_, err = f.svc.Payments.CreateIntent(ctx, services.IntentInput{Price: 0})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestPaymentIntentGatewayFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.Err = errors.New("card network down")

	_, err := f.svc.Payments.CreateIntent(context.Background(), services.IntentInput{Price: 3})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, services.StatusCode(err))
}

func TestRecordPaymentMarksOrderPaid(t *testing.T) {
	for _, prior := range []string{"pending", "accepted", "cancelled"} {
		t.Run(prior, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			res, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io"})
			require.NoError(t, err)
			if prior != "pending" {
				_, err = f.svc.Orders.SetStatus(ctx, res.InsertedID, prior)
				require.NoError(t, err)
			}

			out, err := f.svc.Payments.Record(ctx, "buyer@x.io", services.PaymentInput{OrderID: res.InsertedID, Price: 12.5, TransactionID: "pi_1"})
			require.NoError(t, err)
			assert.NotEmpty(t, out.PaymentResult.InsertedID)
			assert.Equal(t, int64(1), out.OrderResult.MatchedCount)

			o, err := f.svc.Orders.Get(ctx, res.InsertedID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderPaid, o.OrderStatus)
			assert.Equal(t, "paid", o.PaymentStatus)

			mine, err := f.svc.Payments.ListForUser(ctx, "buyer@x.io", "buyer@x.io")
			require.NoError(t, err)
			require.Len(t, mine, 1)
			assert.Equal(t, models.Price(12.5), mine[0].Amount)
			assert.Equal(t, "buyer@x.io", mine[0].Email)
		})
	}
}

func TestRecordPaymentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Payments.Record(ctx, "buyer@x.io", services.PaymentInput{OrderID: "bad"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.Payments.Record(ctx, "buyer@x.io", services.PaymentInput{OrderID: primitive.NewObjectID().Hex(), Email: "else@x.io"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	out, err := f.svc.Payments.Record(ctx, "buyer@x.io", services.PaymentInput{OrderID: primitive.NewObjectID().Hex()})
	require.NoError(t, err)
	assert.Zero(t, out.OrderResult.MatchedCount)

	all, err := f.svc.Payments.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.Payments.ListForUser(ctx, "buyer@x.io", "else@x.io")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestReviewsKeepExactMean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Pho"})
	require.NoError(t, err)

	ratings := []float64{5, 4, 2, 4}
	var sum float64
	for i, r := range ratings {
		_, err := f.svc.Reviews.Submit(ctx, fmt.Sprintf("r%d@x.io", i), services.ReviewInput{MealID: mealID, Rating: r})
		require.NoError(t, err)
		sum += r

		m, err := f.svc.Meals.Get(ctx, mealID)
		require.NoError(t, err)
		assert.InDelta(t, sum/float64(i+1), m.Rating, 1e-9)
		assert.Equal(t, i+1, m.ReviewsCount)
		assert.Equal(t, i+1, m.Likes)
	}

	reviews, err := f.svc.Reviews.List(ctx, "r2@x.io")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Pho", reviews[0].MealTitle)
	assert.Equal(t, mealID, reviews[0].MealID)
}

func TestReviewOnLegacyMealUsesCanonicalID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meals := f.store.Meals.(*repositories.MemoryMealRepository)
	meals.SeedRaw(bson.M{"_id": int64(42), "name": "Old dish", "rating": 3, "reviews_count": 9})

	_, err := f.svc.Reviews.Submit(ctx, "r@x.io", services.ReviewInput{MealID: "42", Rating: 5})
	require.NoError(t, err)

	m, err := f.svc.Meals.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, float64(5), m.Rating, "aggregate is recomputed from stored reviews")
	assert.Equal(t, 1, m.ReviewsCount)
}

func TestReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Pho"})
	require.NoError(t, err)

	for _, r := range []float64{0, 5.5, -1} {
		_, err := f.svc.Reviews.Submit(ctx, "r@x.io", services.ReviewInput{MealID: mealID, Rating: r})
		assert.ErrorIs(t, err, services.ErrInvalidInput, r)
	}
	_, err = f.svc.Reviews.Submit(ctx, "r@x.io", services.ReviewInput{MealID: "missing", Rating: 3})
	assert.ErrorIs(t, err, services.ErrNotFound)

	all, err := f.svc.Reviews.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

// A chef signs up, gets promoted, lists a meal, receives an order and
// moves it along until the buyer pays.
func TestChefScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chefID := f.register(t, "chef@x.io")
	_, err := f.svc.Users.RequestRole(ctx, "chef@x.io", "chef@x.io", models.RoleChef)
	require.NoError(t, err)
	_, err = f.svc.Users.GrantRole(ctx, chefID.Hex(), models.RoleChef)
	require.NoError(t, err)

	mealID, err := f.svc.Meals.Create(ctx, "chef@x.io", bson.M{"title": "Biryani", "price": 10})
	require.NoError(t, err)
	mine, err := f.svc.Meals.ListByChef(ctx, "chef@x.io")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	order, err := f.svc.Orders.Create(ctx, services.OrderInput{UserEmail: "buyer@x.io", ChefEmail: "chef@x.io", MealID: mealID, Name: "Biryani", Price: 10, Quantity: 2})
	require.NoError(t, err)

	incoming, err := f.svc.Orders.ListForChef(ctx, "chef@x.io", "chef@x.io")
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	for _, st := range []string{"accepted", "preparing", "delivered"} {
		_, err = f.svc.Orders.SetStatus(ctx, order.InsertedID, st)
		require.NoError(t, err, st)
	}

	_, err = f.svc.Payments.CreateIntent(ctx, services.IntentInput{Price: 20})
	require.NoError(t, err)
	_, err = f.svc.Payments.Record(ctx, "buyer@x.io", services.PaymentInput{OrderID: order.InsertedID, Amount: 20})
	require.NoError(t, err)

	_, err = f.svc.Orders.SetStatus(ctx, order.InsertedID, "preparing")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return oid
}
