package repositories

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mealLookupFilters is the ordered chain of filters tried to resolve a meal
// id; the first hit wins. New meals resolve on the first step. The rest is
// a compatibility shim for documents imported before ids were ObjectIDs and
// can go once those are migrated.
func mealLookupFilters(id string) []bson.M {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	var filters []bson.M
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}
	filters = append(filters, bson.M{"_id": id}, bson.M{"id": id})
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		filters = append(filters, bson.M{"_id": n}, bson.M{"id": n})
	}
	return filters
}
