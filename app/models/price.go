package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a decimal amount in major currency units. Legacy documents and
// some clients send it as a string ("12.50"); both forms decode.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*p = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = str
	}
	f, err := parsePrice(s)
	if err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*p = 0
		return nil
	case bsontype.Double:
		f := raw.Double()
		if !finite(f) {
			return fmt.Errorf("price: %v is not a finite number", f)
		}
		*p = Price(f)
	case bsontype.Int32:
		*p = Price(raw.Int32())
	case bsontype.Int64:
		*p = Price(raw.Int64())
	case bsontype.String:
		f, err := parsePrice(raw.StringValue())
		if err != nil {
			return err
		}
		*p = Price(f)
	case bsontype.Decimal128:
		f, err := parsePrice(raw.Decimal128().String())
		if err != nil {
			return err
		}
		*p = Price(f)
	default:
		return fmt.Errorf("price: cannot decode bson %s", t)
	}
	return nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("price: %q is not a finite number", s)
	}
	return f, nil
}

// Valid reports whether p is a finite, non-negative amount.
func (p Price) Valid() bool {
	return finite(float64(p)) && p >= 0
}

// finite rejects NaN and the infinities, which have no JSON encoding.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CheckPrice reports an error unless v is absent, blank or a finite number.
func CheckPrice(v any) error {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := toFloat(v); !ok {
		return fmt.Errorf("price: %v is not a finite number", v)
	}
	return nil
}

// toFloat coerces the numeric shapes found in raw documents.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if !finite(n) {
			return 0, false
		}
		return n, true
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case primitive.Decimal128:
		f, err := parsePrice(n.String())
		return f, err == nil
	case string:
		f, err := parsePrice(n)
		return f, err == nil && strings.TrimSpace(n) != ""
	default:
		return 0, false
	}
}
