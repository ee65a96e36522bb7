package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// TerminalStatuses reject any further transition.
var TerminalStatuses = []OrderStatus{OrderPaid, OrderCancelled}

// ParseOrderStatus accepts the known statuses, case-insensitively.
// "canceled" is accepted as an alias.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "canceled" {
		st = OrderCancelled
	}
	switch st {
	case OrderPending, OrderAccepted, OrderPreparing, OrderDelivered, OrderPaid, OrderCancelled:
		return st, true
	}
	return "", false
}

// Terminal reports whether s is paid or cancelled.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// Order is a buyer checkout. Name, Image and Price are a snapshot of the
// meal taken by the client and may be missing on older orders.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	UserName      string             `bson:"userName,omitempty" json:"userName,omitempty"`
	ChefEmail     string             `bson:"chefEmail,omitempty" json:"chefEmail,omitempty"`
	ChefID        string             `bson:"chefId,omitempty" json:"chefId,omitempty"`
	MealID        string             `bson:"mealId,omitempty" json:"mealId,omitempty"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Price         Price              `bson:"price,omitempty" json:"price,omitempty"`
	Quantity      int                `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	OrderTime     time.Time          `bson:"orderTime" json:"orderTime"`
	OrderStatus   OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	PaymentStatus string             `bson:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`
	// Extra holds whatever else the client sent at checkout (chefName,
	// mealName, ...). It is stored inline and rendered as top-level members.
	Extra bson.M `bson:",inline" json:"-"`
}

var orderKnownKeys = keySet(
	"_id", "userEmail", "userName", "chefEmail", "chefId", "mealId", "name",
	"image", "price", "quantity", "address", "orderTime", "orderStatus",
	"paymentStatus",
)

// SetExtra keeps the members of extra that do not name a modelled field.
func (o *Order) SetExtra(extra bson.M) {
	o.Extra = stripKnown(extra, orderKnownKeys)
}

type orderFields Order

func (o Order) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(orderFields(o))
	if err != nil {
		return nil, err
	}
	return withExtra(b, o.Extra)
}

func (o *Order) UnmarshalJSON(b []byte) error {
	var f orderFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	extra, err := splitExtra(b, orderKnownKeys)
	if err != nil {
		return err
	}
	*o = Order(f)
	o.Extra = extra
	return nil
}

// placeholderNames are display names written by older clients when the
// meal title was not at hand.
var placeholderNames = map[string]bool{
	"":             true,
	"unknown":      true,
	"unknown meal": true,
	"n/a":          true,
}

// NeedsBackfill reports whether the display snapshot is missing.
func (o *Order) NeedsBackfill() bool {
	return placeholderNames[strings.ToLower(strings.TrimSpace(o.Name))]
}

// Backfill copies display fields from m into the order in memory. Fields the
// order already carries (other than a placeholder name) are kept.
func (o *Order) Backfill(m Meal) {
	if o.NeedsBackfill() && m.Title != "" {
		o.Name = m.Title
	}
	if strings.TrimSpace(o.Image) == "" {
		o.Image = m.Image
	}
	if o.Price == 0 {
		o.Price = Price(m.Price)
	}
}
