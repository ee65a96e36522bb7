package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Legacy meal documents spell the same field several ways. The first
// present, non-empty alias wins.
var (
	TitleAliases = []string{"title", "name", "mealName", "foodName"}
	ImageAliases = []string{"image", "photo", "photoURL", "imageURL"}
	ChefAliases  = []string{"chefEmail", "chef_email"}
)

// Meal is the canonical view of a meal document. ID is the string form of
// the stored _id (ObjectID hex for new documents).
type Meal struct {
	ID           string
	Title        string
	Category     string
	Price        float64
	Description  string
	Image        string
	ChefEmail    string
	Rating       float64
	ReviewsCount int
	Likes        int
	// Extra holds the fields this service does not interpret (chefName,
	// ingredients, ...). They are stored and returned untouched.
	Extra bson.M
}

var mealKnownKeys = func() map[string]bool {
	known := map[string]bool{
		"_id": true, "category": true, "price": true, "description": true,
		"rating": true, "reviews_count": true, "likes": true,
	}
	for _, group := range [][]string{TitleAliases, ImageAliases, ChefAliases} {
		for _, k := range group {
			known[k] = true
		}
	}
	return known
}()

// NormalizeMeal maps a raw stored document onto Meal. It never fails:
// missing or malformed fields come back as zero values.
func NormalizeMeal(raw bson.M) Meal {
	m := Meal{
		ID:          CanonicalID(raw["_id"]),
		Title:       firstString(raw, TitleAliases),
		Category:    asString(raw["category"]),
		Description: asString(raw["description"]),
		Image:       firstString(raw, ImageAliases),
		ChefEmail:   firstString(raw, ChefAliases),
	}
	m.Price, _ = toFloat(raw["price"])
	m.Rating, _ = toFloat(raw["rating"])
	if f, ok := toFloat(raw["reviews_count"]); ok {
		m.ReviewsCount = int(f)
	}
	if f, ok := toFloat(raw["likes"]); ok {
		m.Likes = int(f)
	}

	for k, v := range raw {
		if !mealKnownKeys[k] {
			if m.Extra == nil {
				m.Extra = bson.M{}
			}
			m.Extra[k] = v
		}
	}
	return m
}

// Document is the canonical stored form, without _id. Aliases are folded
// into their canonical keys.
func (m Meal) Document() bson.M {
	doc := bson.M{}
	for k, v := range m.Extra {
		doc[k] = v
	}
	doc["title"] = m.Title
	doc["category"] = m.Category
	doc["price"] = m.Price
	doc["description"] = m.Description
	doc["image"] = m.Image
	doc["chefEmail"] = m.ChefEmail
	doc["rating"] = m.Rating
	doc["reviews_count"] = m.ReviewsCount
	doc["likes"] = m.Likes
	return doc
}

func (m Meal) MarshalJSON() ([]byte, error) {
	out := m.Document()
	out["_id"] = m.ID
	return json.Marshal(out)
}

// MealPatch is the owner-editable subset of a meal. Nil means untouched.
type MealPatch struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Price       *Price  `json:"price"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// Set returns the $set document for the supplied fields.
func (p MealPatch) Set() bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Price != nil {
		set["price"] = float64(*p.Price)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	return set
}

// CanonicalID renders a stored identifier as a string key.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func firstString(raw bson.M, keys []string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(asString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
