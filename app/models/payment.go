package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is written once per successful checkout and never changed.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	Email         string             `bson:"email" json:"email"`
	Amount        Price              `bson:"amount" json:"amount"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
	// Extra carries whatever else the client sent along (meal name,
	// gateway status, ...), stored next to the modelled fields.
	Extra bson.M `bson:",inline" json:"-"`
}

var paymentKnownKeys = keySet("_id", "orderId", "email", "amount", "transactionId", "date")

// SetExtra keeps the members of extra that do not name a modelled field.
func (p *Payment) SetExtra(extra bson.M) {
	p.Extra = stripKnown(extra, paymentKnownKeys)
}

type paymentFields Payment

func (p Payment) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(paymentFields(p))
	if err != nil {
		return nil, err
	}
	return withExtra(b, p.Extra)
}
