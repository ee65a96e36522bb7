package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
)

// NewMemoryStore returns a Store kept in process memory. Every collection
// keeps insertion order, which is the order listings come back in.
func NewMemoryStore() *Store {
	return &Store{
		Users:    NewMemoryUserRepository(),
		Meals:    NewMemoryMealRepository(),
		Orders:   NewMemoryOrderRepository(),
		Payments: NewMemoryPaymentRepository(),
		Reviews:  NewMemoryReviewRepository(),
		Tx:       NoTx{},
	}
}

// ─────────────────────────────────────────────
// users
// ─────────────────────────────────────────────

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) All(context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.User{}, r.users...), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexByEmail(email); i >= 0 {
		u := r.users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Insert(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexByEmail(u.Email) >= 0 {
		return primitive.NilObjectID, ErrDuplicate
	}
	u.ID = primitive.NewObjectID()
	r.users = append(r.users, *u)
	return u.ID, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, email string, p models.ProfilePatch) (UpdateResult, error) {
	return r.update(r.byEmail(email), func(u *models.User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Photo != nil {
			u.Photo = *p.Photo
		}
		if p.Address != nil {
			u.Address = *p.Address
		}
	})
}

func (r *MemoryUserRepository) RequestRole(_ context.Context, email string, role models.Role) (UpdateResult, error) {
	return r.update(r.byEmail(email), func(u *models.User) {
		u.Status = models.StatusRequested
		u.RequestedRole = &role
	})
}

func (r *MemoryUserRepository) GrantRole(_ context.Context, id primitive.ObjectID, role models.Role) (UpdateResult, error) {
	return r.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) {
		u.Role = role
		u.Status = models.StatusActive
		u.RequestedRole = nil
	})
}

func (r *MemoryUserRepository) byEmail(email string) func(*models.User) bool {
	return func(u *models.User) bool { return u.Email == email }
}

func (r *MemoryUserRepository) update(match func(*models.User) bool, apply func(*models.User)) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if !match(&r.users[i]) {
			continue
		}
		before := r.users[i]
		apply(&r.users[i])
		res := UpdateResult{MatchedCount: 1}
		if !sameUser(before, r.users[i]) {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return UpdateResult{}, nil
}

func (r *MemoryUserRepository) indexByEmail(email string) int {
	for i := range r.users {
		if r.users[i].Email == email {
			return i
		}
	}
	return -1
}

func sameUser(a, b models.User) bool {
	ar, br := a.RequestedRole, b.RequestedRole
	a.RequestedRole, b.RequestedRole = nil, nil
	if a != b {
		return false
	}
	if ar == nil || br == nil {
		return ar == nil && br == nil
	}
	return *ar == *br
}

// ─────────────────────────────────────────────
// meals
// ─────────────────────────────────────────────

// MemoryMealRepository keeps raw documents so legacy shapes can be seeded
// and normalized exactly like documents read from MongoDB.
type MemoryMealRepository struct {
	mu   sync.RWMutex
	docs []bson.M
}

func NewMemoryMealRepository() *MemoryMealRepository {
	return &MemoryMealRepository{}
}

// SeedRaw stores doc as-is. It is meant for legacy fixtures.
func (r *MemoryMealRepository) SeedRaw(doc bson.M) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, copyDoc(doc))
}

// Raw returns the stored document for id without normalization.
func (r *MemoryMealRepository) Raw(id string) (bson.M, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.resolve(id); i >= 0 {
		return copyDoc(r.docs[i]), true
	}
	return nil, false
}

func (r *MemoryMealRepository) Search(_ context.Context, q MealQuery) ([]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []bson.M
	for _, d := range r.docs {
		if mealMatchesSearch(d, q.Search) {
			matched = append(matched, d)
		}
	}
	if q.Skip < 0 || q.Skip >= int64(len(matched)) {
		return []models.Meal{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	return normalizeAll(matched), nil
}

func (r *MemoryMealRepository) Count(_ context.Context, search string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, d := range r.docs {
		if mealMatchesSearch(d, search) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryMealRepository) Find(_ context.Context, id string) (*models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.resolve(id); i >= 0 {
		m := models.NormalizeMeal(r.docs[i])
		return &m, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryMealRepository) ByChef(_ context.Context, email string) ([]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []bson.M
	for _, d := range r.docs {
		for _, k := range models.ChefAliases {
			if s, _ := d[k].(string); s == email {
				matched = append(matched, d)
				break
			}
		}
	}
	return normalizeAll(matched), nil
}

func (r *MemoryMealRepository) Insert(_ context.Context, m models.Meal) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oid := primitive.NewObjectID()
	doc := m.Document()
	doc["_id"] = oid
	r.docs = append(r.docs, doc)
	return oid.Hex(), nil
}

func (r *MemoryMealRepository) Update(_ context.Context, id string, p models.MealPatch) (UpdateResult, error) {
	set := p.Set()
	return r.update(id, func(d bson.M) bool {
		changed := false
		for k, v := range set {
			if d[k] != v {
				d[k] = v
				changed = true
			}
		}
		return changed
	})
}

func (r *MemoryMealRepository) ApplyRatingStats(_ context.Context, id string, s models.RatingStats) (UpdateResult, error) {
	return r.update(id, func(d bson.M) bool {
		likes, _ := asNumber(d["likes"])
		d["rating"] = s.Average
		d["reviews_count"] = s.Count
		d["likes"] = int(likes) + 1
		return true
	})
}

func (r *MemoryMealRepository) Delete(_ context.Context, id string) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.resolve(id)
	if i < 0 {
		return DeleteResult{}, nil
	}
	r.docs = append(r.docs[:i], r.docs[i+1:]...)
	return DeleteResult{DeletedCount: 1}, nil
}

func (r *MemoryMealRepository) update(id string, apply func(bson.M) bool) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.resolve(id)
	if i < 0 {
		return UpdateResult{}, nil
	}
	res := UpdateResult{MatchedCount: 1}
	if apply(r.docs[i]) {
		res.ModifiedCount = 1
	}
	return res, nil
}

// resolve walks the same lookup chain as the Mongo repository.
func (r *MemoryMealRepository) resolve(id string) int {
	for _, f := range mealLookupFilters(id) {
		for i, d := range r.docs {
			if matchesEq(d, f) {
				return i
			}
		}
	}
	return -1
}

func mealMatchesSearch(d bson.M, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	keys := append(append([]string{}, models.TitleAliases...), "category")
	for _, k := range keys {
		if s, ok := d[k].(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

// matchesEq evaluates an equality-only filter. Numbers compare by value
// across int and float types, as they do in MongoDB.
func matchesEq(d bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, ok := d[k]
		if !ok {
			return false
		}
		gn, gok := asNumber(got)
		wn, wok := asNumber(want)
		if gok && wok {
			if gn != wn {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func normalizeAll(docs []bson.M) []models.Meal {
	meals := make([]models.Meal, 0, len(docs))
	for _, d := range docs {
		meals = append(meals, models.NormalizeMeal(d))
	}
	return meals
}

func copyDoc(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ─────────────────────────────────────────────
// orders
// ─────────────────────────────────────────────

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{}
}

func (r *MemoryOrderRepository) Insert(_ context.Context, o *models.Order) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = primitive.NewObjectID()
	r.orders = append(r.orders, *o)
	return o.ID, nil
}

func (r *MemoryOrderRepository) Find(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		o := r.orders[i]
		return &o, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryOrderRepository) ByBuyer(_ context.Context, email string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserEmail == email }), nil
}

func (r *MemoryOrderRepository) ByChef(_ context.Context, email string) ([]models.Order, error) {
	out := r.filter(func(o models.Order) bool { return o.ChefID == email || o.ChefEmail == email })
	// Newest first; later inserts win ties like the _id tiebreak in MongoDB.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderTime.After(out[j].OrderTime) })
	return out, nil
}

func (r *MemoryOrderRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus, unless []models.OrderStatus) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return UpdateResult{}, nil
	}
	for _, s := range unless {
		if r.orders[i].OrderStatus == s {
			return UpdateResult{}, nil
		}
	}
	res := UpdateResult{MatchedCount: 1}
	if r.orders[i].OrderStatus != status {
		r.orders[i].OrderStatus = status
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *MemoryOrderRepository) MarkPaid(_ context.Context, id primitive.ObjectID) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return UpdateResult{}, nil
	}
	o := &r.orders[i]
	res := UpdateResult{MatchedCount: 1}
	if o.OrderStatus != models.OrderPaid || o.PaymentStatus != string(models.OrderPaid) {
		o.OrderStatus = models.OrderPaid
		o.PaymentStatus = string(models.OrderPaid)
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id primitive.ObjectID) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return DeleteResult{}, nil
	}
	r.orders = append(r.orders[:i], r.orders[i+1:]...)
	return DeleteResult{DeletedCount: 1}, nil
}

func (r *MemoryOrderRepository) index(id primitive.ObjectID) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// ─────────────────────────────────────────────
// payments
// ─────────────────────────────────────────────

type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments []models.Payment
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{}
}

func (r *MemoryPaymentRepository) Insert(_ context.Context, p *models.Payment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.payments = append(r.payments, *p)
	return p.ID, nil
}

func (r *MemoryPaymentRepository) ByEmail(_ context.Context, email string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Payment{}
	for _, p := range r.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryPaymentRepository) All(context.Context) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Payment{}, r.payments...), nil
}

// ─────────────────────────────────────────────
// reviews
// ─────────────────────────────────────────────

type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews []models.Review
}

func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{}
}

func (r *MemoryReviewRepository) Insert(_ context.Context, rv *models.Review) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ID = primitive.NewObjectID()
	r.reviews = append(r.reviews, *rv)
	return rv.ID, nil
}

func (r *MemoryReviewRepository) List(_ context.Context, email string) ([]models.Review, error) {
	r.mu.RLock()
	out := []models.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if email == "" || r.reviews[i].Email == email {
			out = append(out, r.reviews[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *MemoryReviewRepository) RatingStats(_ context.Context, mealID string) (models.RatingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var forMeal []models.Review
	for _, rv := range r.reviews {
		if rv.MealID == mealID {
			forMeal = append(forMeal, rv)
		}
	}
	return models.ComputeRatingStats(forMeal), nil
}
